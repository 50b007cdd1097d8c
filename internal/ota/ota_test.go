package ota

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"domes/internal/drivers"
)

func TestHappyPathMatchesSpecScenario(t *testing.T) {
	part := drivers.NewSimPartition()
	sess := NewSession(part)

	image := make([]byte, 2048)
	for i := range image {
		image[i] = byte(i)
	}
	digest := sha256.Sum256(image)

	reply := sess.Begin(BeginRequest{Size: 2048, SHA256: digest, Version: "v1.2.3"})
	require.Equal(t, AckReply{Status: StatusOk, NextOffset: 0}, reply)

	reply = sess.Data(DataChunk{Offset: 0, Bytes: image[0:1016]})
	require.Equal(t, AckReply{Status: StatusOk, NextOffset: 1016}, reply)

	reply = sess.Data(DataChunk{Offset: 1016, Bytes: image[1016:2032]})
	require.Equal(t, AckReply{Status: StatusOk, NextOffset: 2032}, reply)

	reply = sess.Data(DataChunk{Offset: 2032, Bytes: image[2032:2048]})
	require.Equal(t, AckReply{Status: StatusOk, NextOffset: 2048}, reply)

	reply = sess.End()
	require.Equal(t, AckReply{Status: StatusOk, NextOffset: 2048}, reply)
	require.Equal(t, 1, part.RebootCount)
	require.Equal(t, StateIdle, sess.State())
}

func TestOffsetMismatchWritesNoBytes(t *testing.T) {
	part := drivers.NewSimPartition()
	sess := NewSession(part)

	digest := sha256.Sum256(make([]byte, 2048))
	require.Equal(t, AckReply{Status: StatusOk, NextOffset: 0}, sess.Begin(BeginRequest{Size: 2048, SHA256: digest}))

	reply := sess.Data(DataChunk{Offset: 100, Bytes: make([]byte, 16)})
	require.Equal(t, AckReply{Status: StatusOffsetMismatch, NextOffset: 0}, reply)
	require.Equal(t, uint32(0), sess.bytesReceived)
}

func TestBeginWhileReceivingDiscardsPriorSession(t *testing.T) {
	part := drivers.NewSimPartition()
	sess := NewSession(part)

	digest := sha256.Sum256(make([]byte, 100))
	sess.Begin(BeginRequest{Size: 100, SHA256: digest})
	sess.Data(DataChunk{Offset: 0, Bytes: make([]byte, 50)})

	digest2 := sha256.Sum256(make([]byte, 64))
	reply := sess.Begin(BeginRequest{Size: 64, SHA256: digest2})
	require.Equal(t, AckReply{Status: StatusOk, NextOffset: 0}, reply)
	require.Equal(t, StateReceiving, sess.State())
}

func TestDataInIdleIsAborted(t *testing.T) {
	sess := NewSession(drivers.NewSimPartition())
	reply := sess.Data(DataChunk{Offset: 0, Bytes: []byte{1}})
	require.Equal(t, AckReply{Status: StatusAborted, NextOffset: 0}, reply)
}

func TestSizeMismatchOnEndAbortsSession(t *testing.T) {
	part := drivers.NewSimPartition()
	sess := NewSession(part)
	digest := sha256.Sum256(make([]byte, 100))
	sess.Begin(BeginRequest{Size: 100, SHA256: digest})
	sess.Data(DataChunk{Offset: 0, Bytes: make([]byte, 40)})

	reply := sess.End()
	require.Equal(t, StatusSizeMismatch, reply.Status)
	require.Equal(t, StateIdle, sess.State())
}

func TestFlashErrorOnWriteAbortsSession(t *testing.T) {
	part := drivers.NewSimPartition()
	part.FailWrites = true
	sess := NewSession(part)
	digest := sha256.Sum256(make([]byte, 10))
	sess.Begin(BeginRequest{Size: 10, SHA256: digest})

	reply := sess.Data(DataChunk{Offset: 0, Bytes: make([]byte, 10)})
	require.Equal(t, StatusFlashError, reply.Status)
	require.Equal(t, StateIdle, sess.State())
}

func TestVerifyFailedOnDigestMismatch(t *testing.T) {
	part := drivers.NewSimPartition()
	sess := NewSession(part)
	var wrongDigest [32]byte
	sess.Begin(BeginRequest{Size: 4, SHA256: wrongDigest})
	sess.Data(DataChunk{Offset: 0, Bytes: []byte{1, 2, 3, 4}})

	reply := sess.End()
	require.Equal(t, StatusVerifyFailed, reply.Status)
}

func TestAbortFromReceivingReturnsToIdle(t *testing.T) {
	part := drivers.NewSimPartition()
	sess := NewSession(part)
	digest := sha256.Sum256(make([]byte, 10))
	sess.Begin(BeginRequest{Size: 10, SHA256: digest})
	sess.Abort()
	require.Equal(t, StateIdle, sess.State())

	reply := sess.Data(DataChunk{Offset: 0, Bytes: []byte{1}})
	require.Equal(t, StatusAborted, reply.Status)
}
