package reconcile

import (
	"context"
	"reflect"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/esgf/solrsync/common/types"
)

// Mockindex is a mock of index interface.
type Mockindex struct {
	ctrl     *gomock.Controller
	recorder *MockindexMockRecorder
}

// MockindexMockRecorder is the mock recorder for Mockindex.
type MockindexMockRecorder struct {
	mock *Mockindex
}

// NewMockindex creates a new mock instance.
func NewMockindex(ctrl *gomock.Controller) *Mockindex {
	mock := &Mockindex{ctrl: ctrl}
	mock.recorder = &MockindexMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *Mockindex) EXPECT() *MockindexMockRecorder {
	return m.recorder
}

// Stats mocks base method.
func (m *Mockindex) Stats(arg0 context.Context, arg1 types.Query) (types.Signature, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Stats", arg0, arg1)
	ret0, _ := ret[0].(types.Signature)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Stats indicates an expected call of Stats.
func (mr *MockindexMockRecorder) Stats(arg0, arg1 any) *MockindexStatsCall {
	mr.mock.ctrl.T.Helper()
	call := mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Stats", reflect.TypeOf((*Mockindex)(nil).Stats), arg0, arg1)
	return &MockindexStatsCall{Call: call}
}

// MockindexStatsCall wrap *gomock.Call.
type MockindexStatsCall struct {
	*gomock.Call
}

// Return rewrite *gomock.Call.Return.
func (c *MockindexStatsCall) Return(arg0 types.Signature, arg1 error) *MockindexStatsCall {
	c.Call = c.Call.Return(arg0, arg1)
	return c
}

// Do rewrite *gomock.Call.Do.
func (c *MockindexStatsCall) Do(f func(context.Context, types.Query) (types.Signature, error)) *MockindexStatsCall {
	c.Call = c.Call.Do(f)
	return c
}

// DoAndReturn rewrite *gomock.Call.DoAndReturn.
func (c *MockindexStatsCall) DoAndReturn(f func(context.Context, types.Query) (types.Signature, error)) *MockindexStatsCall {
	c.Call = c.Call.DoAndReturn(f)
	return c
}

// Fetch mocks base method.
func (m *Mockindex) Fetch(arg0 context.Context, arg1 types.Query, arg2 int, arg3 int) (types.Page, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Fetch", arg0, arg1, arg2, arg3)
	ret0, _ := ret[0].(types.Page)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Fetch indicates an expected call of Fetch.
func (mr *MockindexMockRecorder) Fetch(arg0, arg1, arg2, arg3 any) *MockindexFetchCall {
	mr.mock.ctrl.T.Helper()
	call := mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Fetch", reflect.TypeOf((*Mockindex)(nil).Fetch), arg0, arg1, arg2, arg3)
	return &MockindexFetchCall{Call: call}
}

// MockindexFetchCall wrap *gomock.Call.
type MockindexFetchCall struct {
	*gomock.Call
}

// Return rewrite *gomock.Call.Return.
func (c *MockindexFetchCall) Return(arg0 types.Page, arg1 error) *MockindexFetchCall {
	c.Call = c.Call.Return(arg0, arg1)
	return c
}

// Do rewrite *gomock.Call.Do.
func (c *MockindexFetchCall) Do(f func(context.Context, types.Query, int, int) (types.Page, error)) *MockindexFetchCall {
	c.Call = c.Call.Do(f)
	return c
}

// DoAndReturn rewrite *gomock.Call.DoAndReturn.
func (c *MockindexFetchCall) DoAndReturn(f func(context.Context, types.Query, int, int) (types.Page, error)) *MockindexFetchCall {
	c.Call = c.Call.DoAndReturn(f)
	return c
}

// BulkWrite mocks base method.
func (m *Mockindex) BulkWrite(arg0 context.Context, arg1 string, arg2 []types.Record, arg3 bool) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BulkWrite", arg0, arg1, arg2, arg3)
	ret0, _ := ret[0].(error)
	return ret0
}

// BulkWrite indicates an expected call of BulkWrite.
func (mr *MockindexMockRecorder) BulkWrite(arg0, arg1, arg2, arg3 any) *MockindexBulkWriteCall {
	mr.mock.ctrl.T.Helper()
	call := mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BulkWrite", reflect.TypeOf((*Mockindex)(nil).BulkWrite), arg0, arg1, arg2, arg3)
	return &MockindexBulkWriteCall{Call: call}
}

// MockindexBulkWriteCall wrap *gomock.Call.
type MockindexBulkWriteCall struct {
	*gomock.Call
}

// Return rewrite *gomock.Call.Return.
func (c *MockindexBulkWriteCall) Return(arg0 error) *MockindexBulkWriteCall {
	c.Call = c.Call.Return(arg0)
	return c
}

// Do rewrite *gomock.Call.Do.
func (c *MockindexBulkWriteCall) Do(f func(context.Context, string, []types.Record, bool) error) *MockindexBulkWriteCall {
	c.Call = c.Call.Do(f)
	return c
}

// DoAndReturn rewrite *gomock.Call.DoAndReturn.
func (c *MockindexBulkWriteCall) DoAndReturn(f func(context.Context, string, []types.Record, bool) error) *MockindexBulkWriteCall {
	c.Call = c.Call.DoAndReturn(f)
	return c
}

// DeleteByQuery mocks base method.
func (m *Mockindex) DeleteByQuery(arg0 context.Context, arg1 types.Query, arg2 bool) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteByQuery", arg0, arg1, arg2)
	ret0, _ := ret[0].(error)
	return ret0
}

// DeleteByQuery indicates an expected call of DeleteByQuery.
func (mr *MockindexMockRecorder) DeleteByQuery(arg0, arg1, arg2 any) *MockindexDeleteByQueryCall {
	mr.mock.ctrl.T.Helper()
	call := mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteByQuery", reflect.TypeOf((*Mockindex)(nil).DeleteByQuery), arg0, arg1, arg2)
	return &MockindexDeleteByQueryCall{Call: call}
}

// MockindexDeleteByQueryCall wrap *gomock.Call.
type MockindexDeleteByQueryCall struct {
	*gomock.Call
}

// Return rewrite *gomock.Call.Return.
func (c *MockindexDeleteByQueryCall) Return(arg0 error) *MockindexDeleteByQueryCall {
	c.Call = c.Call.Return(arg0)
	return c
}

// Do rewrite *gomock.Call.Do.
func (c *MockindexDeleteByQueryCall) Do(f func(context.Context, types.Query, bool) error) *MockindexDeleteByQueryCall {
	c.Call = c.Call.Do(f)
	return c
}

// DoAndReturn rewrite *gomock.Call.DoAndReturn.
func (c *MockindexDeleteByQueryCall) DoAndReturn(f func(context.Context, types.Query, bool) error) *MockindexDeleteByQueryCall {
	c.Call = c.Call.DoAndReturn(f)
	return c
}

// Commit mocks base method.
func (m *Mockindex) Commit(arg0 context.Context, arg1 string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Commit", arg0, arg1)
	ret0, _ := ret[0].(error)
	return ret0
}

// Commit indicates an expected call of Commit.
func (mr *MockindexMockRecorder) Commit(arg0, arg1 any) *MockindexCommitCall {
	mr.mock.ctrl.T.Helper()
	call := mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Commit", reflect.TypeOf((*Mockindex)(nil).Commit), arg0, arg1)
	return &MockindexCommitCall{Call: call}
}

// MockindexCommitCall wrap *gomock.Call.
type MockindexCommitCall struct {
	*gomock.Call
}

// Return rewrite *gomock.Call.Return.
func (c *MockindexCommitCall) Return(arg0 error) *MockindexCommitCall {
	c.Call = c.Call.Return(arg0)
	return c
}

// Do rewrite *gomock.Call.Do.
func (c *MockindexCommitCall) Do(f func(context.Context, string) error) *MockindexCommitCall {
	c.Call = c.Call.Do(f)
	return c
}

// DoAndReturn rewrite *gomock.Call.DoAndReturn.
func (c *MockindexCommitCall) DoAndReturn(f func(context.Context, string) error) *MockindexCommitCall {
	c.Call = c.Call.DoAndReturn(f)
	return c
}

// Optimize mocks base method.
func (m *Mockindex) Optimize(arg0 context.Context, arg1 string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Optimize", arg0, arg1)
	ret0, _ := ret[0].(error)
	return ret0
}

// Optimize indicates an expected call of Optimize.
func (mr *MockindexMockRecorder) Optimize(arg0, arg1 any) *MockindexOptimizeCall {
	mr.mock.ctrl.T.Helper()
	call := mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Optimize", reflect.TypeOf((*Mockindex)(nil).Optimize), arg0, arg1)
	return &MockindexOptimizeCall{Call: call}
}

// MockindexOptimizeCall wrap *gomock.Call.
type MockindexOptimizeCall struct {
	*gomock.Call
}

// Return rewrite *gomock.Call.Return.
func (c *MockindexOptimizeCall) Return(arg0 error) *MockindexOptimizeCall {
	c.Call = c.Call.Return(arg0)
	return c
}

// Do rewrite *gomock.Call.Do.
func (c *MockindexOptimizeCall) Do(f func(context.Context, string) error) *MockindexOptimizeCall {
	c.Call = c.Call.Do(f)
	return c
}

// DoAndReturn rewrite *gomock.Call.DoAndReturn.
func (c *MockindexOptimizeCall) DoAndReturn(f func(context.Context, string) error) *MockindexOptimizeCall {
	c.Call = c.Call.DoAndReturn(f)
	return c
}

// MockcheckpointStore is a mock of checkpointStore interface.
type MockcheckpointStore struct {
	ctrl     *gomock.Controller
	recorder *MockcheckpointStoreMockRecorder
}

// MockcheckpointStoreMockRecorder is the mock recorder for MockcheckpointStore.
type MockcheckpointStoreMockRecorder struct {
	mock *MockcheckpointStore
}

// NewMockcheckpointStore creates a new mock instance.
func NewMockcheckpointStore(ctrl *gomock.Controller) *MockcheckpointStore {
	mock := &MockcheckpointStore{ctrl: ctrl}
	mock.recorder = &MockcheckpointStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockcheckpointStore) EXPECT() *MockcheckpointStoreMockRecorder {
	return m.recorder
}

// Load mocks base method.
func (m *MockcheckpointStore) Load(arg0 string, arg1 string) (time.Time, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Load", arg0, arg1)
	ret0, _ := ret[0].(time.Time)
	ret1, _ := ret[1].(bool)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Load indicates an expected call of Load.
func (mr *MockcheckpointStoreMockRecorder) Load(arg0, arg1 any) *MockcheckpointStoreLoadCall {
	mr.mock.ctrl.T.Helper()
	call := mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Load", reflect.TypeOf((*MockcheckpointStore)(nil).Load), arg0, arg1)
	return &MockcheckpointStoreLoadCall{Call: call}
}

// MockcheckpointStoreLoadCall wrap *gomock.Call.
type MockcheckpointStoreLoadCall struct {
	*gomock.Call
}

// Return rewrite *gomock.Call.Return.
func (c *MockcheckpointStoreLoadCall) Return(arg0 time.Time, arg1 bool, arg2 error) *MockcheckpointStoreLoadCall {
	c.Call = c.Call.Return(arg0, arg1, arg2)
	return c
}

// Do rewrite *gomock.Call.Do.
func (c *MockcheckpointStoreLoadCall) Do(f func(string, string) (time.Time, bool, error)) *MockcheckpointStoreLoadCall {
	c.Call = c.Call.Do(f)
	return c
}

// DoAndReturn rewrite *gomock.Call.DoAndReturn.
func (c *MockcheckpointStoreLoadCall) DoAndReturn(f func(string, string) (time.Time, bool, error)) *MockcheckpointStoreLoadCall {
	c.Call = c.Call.DoAndReturn(f)
	return c
}

// Save mocks base method.
func (m *MockcheckpointStore) Save(arg0 string, arg1 string, arg2 time.Time, arg3 int) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Save", arg0, arg1, arg2, arg3)
	ret0, _ := ret[0].(error)
	return ret0
}

// Save indicates an expected call of Save.
func (mr *MockcheckpointStoreMockRecorder) Save(arg0, arg1, arg2, arg3 any) *MockcheckpointStoreSaveCall {
	mr.mock.ctrl.T.Helper()
	call := mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Save", reflect.TypeOf((*MockcheckpointStore)(nil).Save), arg0, arg1, arg2, arg3)
	return &MockcheckpointStoreSaveCall{Call: call}
}

// MockcheckpointStoreSaveCall wrap *gomock.Call.
type MockcheckpointStoreSaveCall struct {
	*gomock.Call
}

// Return rewrite *gomock.Call.Return.
func (c *MockcheckpointStoreSaveCall) Return(arg0 error) *MockcheckpointStoreSaveCall {
	c.Call = c.Call.Return(arg0)
	return c
}

// Do rewrite *gomock.Call.Do.
func (c *MockcheckpointStoreSaveCall) Do(f func(string, string, time.Time, int) error) *MockcheckpointStoreSaveCall {
	c.Call = c.Call.Do(f)
	return c
}

// DoAndReturn rewrite *gomock.Call.DoAndReturn.
func (c *MockcheckpointStoreSaveCall) DoAndReturn(f func(string, string, time.Time, int) error) *MockcheckpointStoreSaveCall {
	c.Call = c.Call.DoAndReturn(f)
	return c
}

// Clear mocks base method.
func (m *MockcheckpointStore) Clear(arg0 string, arg1 string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Clear", arg0, arg1)
	ret0, _ := ret[0].(error)
	return ret0
}

// Clear indicates an expected call of Clear.
func (mr *MockcheckpointStoreMockRecorder) Clear(arg0, arg1 any) *MockcheckpointStoreClearCall {
	mr.mock.ctrl.T.Helper()
	call := mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Clear", reflect.TypeOf((*MockcheckpointStore)(nil).Clear), arg0, arg1)
	return &MockcheckpointStoreClearCall{Call: call}
}

// MockcheckpointStoreClearCall wrap *gomock.Call.
type MockcheckpointStoreClearCall struct {
	*gomock.Call
}

// Return rewrite *gomock.Call.Return.
func (c *MockcheckpointStoreClearCall) Return(arg0 error) *MockcheckpointStoreClearCall {
	c.Call = c.Call.Return(arg0)
	return c
}

// Do rewrite *gomock.Call.Do.
func (c *MockcheckpointStoreClearCall) Do(f func(string, string) error) *MockcheckpointStoreClearCall {
	c.Call = c.Call.Do(f)
	return c
}

// DoAndReturn rewrite *gomock.Call.DoAndReturn.
func (c *MockcheckpointStoreClearCall) DoAndReturn(f func(string, string) error) *MockcheckpointStoreClearCall {
	c.Call = c.Call.DoAndReturn(f)
	return c
}
