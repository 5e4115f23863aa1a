// Package mocks provides mock implementations for testing the knowledge chat service.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// port interfaces. The mocks are generated using go:generate directives and provide
// a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockKnowledgeStore(ctrl)
//	store.EXPECT().Retrieve(gomock.Any()).Return(docs, nil)
package mocks

// Generate mocks for the pipeline ports: KnowledgeStore, AnswerGenerator,
// Directory, StatsCache.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/beaconworks/kb-chat-api/internal/ports KnowledgeStore,AnswerGenerator,Directory,StatsCache
