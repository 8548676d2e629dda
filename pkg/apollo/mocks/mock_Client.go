// Package mocks provides test doubles for the apollo client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	apollo "github.com/sells-group/contact-cli/pkg/apollo"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// MatchPerson provides a mock function with given fields: ctx, req
func (_m *MockClient) MatchPerson(ctx context.Context, req apollo.MatchRequest) (*apollo.MatchResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for MatchPerson")
	}

	var r0 *apollo.MatchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, apollo.MatchRequest) (*apollo.MatchResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, apollo.MatchRequest) *apollo.MatchResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*apollo.MatchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, apollo.MatchRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SearchPeople provides a mock function with given fields: ctx, req
func (_m *MockClient) SearchPeople(ctx context.Context, req apollo.SearchRequest) (*apollo.SearchResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for SearchPeople")
	}

	var r0 *apollo.SearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, apollo.SearchRequest) (*apollo.SearchResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, apollo.SearchRequest) *apollo.SearchResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*apollo.SearchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, apollo.SearchRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
