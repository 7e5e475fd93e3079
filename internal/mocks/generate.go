package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name DirectoryRepository --dir ../domain/team --output domain/team --outpkg teammock --filename directory_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name OverrideRepository --dir ../domain/team --output domain/team --outpkg teammock --filename override_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/prospect --output domain/prospect --outpkg prospectmock --filename repository_mock.go
