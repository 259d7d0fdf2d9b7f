package common

import (
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/hacash/node/common/mocks"
)

const (
	// message length: 12
	shortMessage = "test message"
	shortLength  = 12
	// message length: 260
	longMessage = "the quick brown fox jumps over the lazy dog multiple times to make this message longer and longer and longer and longer and longer and longer and longer and longer and longer and longer and longer and longer and longer until it is more than 256 characters long"
	longLength  = 260
)

func TestWriteMessageToStream(t *testing.T) {
	tests := []struct {
		name      string
		message   []byte
		wantErr   bool
		setupMock func(*mocks.MockStream)
	}{
		{
			name:    "successful write with short message",
			message: []byte(shortMessage),
			wantErr: false,
			setupMock: func(m *mocks.MockStream) {
				m.EXPECT().SetWriteDeadline(gomock.Any()).Return(nil)
				gomock.InOrder(
					// first expect the length of the message to be written
					m.EXPECT().Write(gomock.Any()).DoAndReturn(func(b []byte) (int, error) {
						assert.Equal(t, []byte{0, 0, 0, 12}, b)
						return 4, nil
					}),
					// then expect the message itself to be written
					m.EXPECT().Write(gomock.Any()).DoAndReturn(func(b []byte) (int, error) {
						assert.Equal(t, []byte(shortMessage), b)
						return shortLength, nil
					}),
				)
			},
		},
		{
			name:    "successful write with long message",
			message: []byte(longMessage),
			wantErr: false,
			setupMock: func(m *mocks.MockStream) {
				m.EXPECT().SetWriteDeadline(gomock.Any()).Return(nil)
				gomock.InOrder(
					m.EXPECT().Write(gomock.Any()).DoAndReturn(func(b []byte) (int, error) {
						assert.Equal(t, []byte{0, 0, 1, 4}, b) // 260 = 0x0104
						return 4, nil
					}),
					m.EXPECT().Write(gomock.Any()).DoAndReturn(func(b []byte) (int, error) {
						assert.Equal(t, []byte(longMessage), b)
						return longLength, nil
					}),
				)
			},
		},
		{
			name:    "error on write deadline",
			message: []byte(shortMessage),
			wantErr: true,
			setupMock: func(m *mocks.MockStream) {
				m.EXPECT().SetWriteDeadline(gomock.Any()).Return(fmt.Errorf("error"))
			},
		},
		{
			name:    "error on write",
			message: []byte(shortMessage),
			wantErr: true,
			setupMock: func(m *mocks.MockStream) {
				m.EXPECT().SetWriteDeadline(gomock.Any()).Return(nil)
				m.EXPECT().Write(gomock.Any()).Return(0, fmt.Errorf("broken pipe"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockStream := mocks.NewMockStream(ctrl)
			tt.setupMock(mockStream)

			err := WriteMessageToStream(mockStream, tt.message)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReadMessageFromStream(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*mocks.MockStream)
		want      []byte
		wantErr   error
	}{
		{
			name: "successful read with short message",
			setupMock: func(m *mocks.MockStream) {
				m.EXPECT().SetReadDeadline(gomock.Any()).Return(nil)
				gomock.InOrder(
					// assert that the length of the message is read first
					m.EXPECT().Read(gomock.Any()).DoAndReturn(func(b []byte) (int, error) {
						assert.Equal(t, len(b), 4)
						return copy(b, []byte{0, 0, 0, 12}), nil
					}),
					// then assert that the message itself is read
					m.EXPECT().Read(gomock.Any()).DoAndReturn(func(b []byte) (int, error) {
						assert.Equal(t, len(b), 12)
						return copy(b, []byte(shortMessage)), nil
					}),
				)
			},
			want: []byte(shortMessage),
		},
		{
			name: "message over the size limit",
			setupMock: func(m *mocks.MockStream) {
				m.EXPECT().SetReadDeadline(gomock.Any()).Return(nil)
				m.EXPECT().Read(gomock.Any()).DoAndReturn(func(b []byte) (int, error) {
					return copy(b, []byte{0xff, 0, 0, 0}), nil
				})
			},
			wantErr: ErrMessageTooLarge,
		},
		{
			name: "closed stream",
			setupMock: func(m *mocks.MockStream) {
				m.EXPECT().SetReadDeadline(gomock.Any()).Return(nil)
				m.EXPECT().Read(gomock.Any()).Return(0, io.EOF)
			},
			wantErr: io.EOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockStream := mocks.NewMockStream(ctrl)
			tt.setupMock(mockStream)

			got, err := ReadMessageFromStream(mockStream)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStreamRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		_ = WriteMessageToStream(a, []byte(longMessage))
		_ = WriteMessageToStream(a, nil)
	}()
	got, err := ReadMessageFromStream(b)
	require.NoError(t, err)
	assert.Equal(t, longMessage, string(got))
	got, err = ReadMessageFromStream(b)
	require.NoError(t, err)
	assert.Empty(t, got)
}
