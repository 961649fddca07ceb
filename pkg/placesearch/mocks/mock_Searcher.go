// Package mocks provides test doubles for the placesearch client.
package mocks

import (
	"context"

	placesearch "github.com/sells-group/transcript-geo/pkg/placesearch"
	mock "github.com/stretchr/testify/mock"
)

// MockSearcher is a mock type for the Searcher interface.
type MockSearcher struct {
	mock.Mock
}

// Search provides a mock function with given fields: ctx, q
func (_m *MockSearcher) Search(ctx context.Context, q placesearch.Query) ([]placesearch.Result, error) {
	ret := _m.Called(ctx, q)

	if len(ret) == 0 {
		panic("no return value specified for Search")
	}

	var r0 []placesearch.Result
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, placesearch.Query) ([]placesearch.Result, error)); ok {
		return rf(ctx, q)
	}
	if rf, ok := ret.Get(0).(func(context.Context, placesearch.Query) []placesearch.Result); ok {
		r0 = rf(ctx, q)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]placesearch.Result)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, placesearch.Query) error); ok {
		r1 = rf(ctx, q)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockSearcher creates a new instance of MockSearcher. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockSearcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSearcher {
	m := &MockSearcher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
