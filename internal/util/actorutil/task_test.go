package actorutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackgroundTaskSuccessValueDelivered(t *testing.T) {
	assert := assert.New(t)

	var got string
	value := "done"
	NewBackgroundTask(nil, func() (*string, error) {
		return &value, nil
	}).OnSuccess(func(v string) {
		got = v
	}).Run()

	assert.Equal("done", got)
}

func TestBackgroundTaskRecoverValueDelivered(t *testing.T) {
	assert := assert.New(t)

	var got string
	NewBackgroundTask(nil, func() (*string, error) {
		return nil, errors.New("serial read failed")
	}).Recover(func(err error) string {
		return "recovered: " + err.Error()
	}).OnSuccess(func(v string) {
		got = v
	}).Run()

	assert.Equal("recovered: serial read failed", got)
}

func TestBackgroundTaskErrorWithoutRecover(t *testing.T) {
	assert := assert.New(t)

	var gotErr error
	called := false
	NewBackgroundTask(nil, func() (*string, error) {
		return nil, errors.New("serial read failed")
	}).OnError(func(err error) {
		gotErr = err
	}).OnSuccess(func(v string) {
		called = true
	}).Run()

	assert.EqualError(gotErr, "serial read failed")
	assert.False(called, "no success callback on an unrecovered error")
}

func TestMapBackgroundTaskRecoverValueDelivered(t *testing.T) {
	assert := assert.New(t)

	var got int
	MapBackgroundTask(NewBackgroundTask(nil, func() (*string, error) {
		return nil, errors.New("serial read failed")
	}), func(s *string) *int {
		n := len(*s)
		return &n
	}).Recover(func(err error) int {
		return -1
	}).OnSuccess(func(v int) {
		got = v
	}).Run()

	assert.Equal(-1, got)
}
