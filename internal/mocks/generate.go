// Package mocks provides gomock implementations of the worker's collaborator interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockResultStore(ctrl)
//	store.EXPECT().WriteResult(gomock.Any(), "j1", gomock.Any()).Return(nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=result_store_mock.go github.com/leadgpt/emailgend/internal/jobrunner ResultStore

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=orchestrator_mock.go github.com/leadgpt/emailgend/internal/jobrunner Orchestrator

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=delivery_mock.go github.com/leadgpt/emailgend/internal/queue Delivery
