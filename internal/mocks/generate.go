package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Resolver --dir ../domain/team --output domain/team --outpkg teammock --filename resolver_mock.go
