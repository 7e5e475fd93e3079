package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("provider_team_id", "canonical_name").
		From("provider_team_directory").
		Where(Eq("provider_id", "hoopdata"), IsNull("deleted_at")).
		OrderBy("canonical_name").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT provider_team_id, canonical_name FROM provider_team_directory WHERE provider_id = $1 AND deleted_at IS NULL ORDER BY canonical_name LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "hoopdata" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("team_overrides").
		Columns("normalized_name", "provider_id").
		Values("partizan", "intlbasket").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO team_overrides (normalized_name, provider_id) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "partizan" || args[1] != "intlbasket" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("provider_team_directory").
		Set("country", "Spain").
		SetExpr("updated_at", "NOW()").
		Where(Eq("provider_team_id", "ib-4")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE provider_team_directory SET country = $1, updated_at = NOW() WHERE provider_team_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Spain" || args[1] != "ib-4" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("provider_team_directory").
		Where(Eq("provider_id", "intlbasket")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM provider_team_directory WHERE provider_id = $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "intlbasket" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInBuilderEmptyValues(t *testing.T) {
	query, args, err := Select("*").
		From("prospects").
		Where(In("source", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM prospects WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
