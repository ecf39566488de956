package walker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ai8future/fieldcrypt/internal/mock"
	"github.com/ai8future/fieldcrypt/internal/store"
	"github.com/ai8future/fieldcrypt/models"
)

func setupMockStore(t *testing.T) (*mock.MockRecordStore, *mock.MockRecordBatch) {
	t.Helper()
	ctrl := gomock.NewController(t)
	s := mock.NewMockRecordStore(ctrl)
	b := mock.NewMockRecordBatch(ctrl)
	s.EXPECT().Collection().Return(models.Transactions).AnyTimes()
	return s, b
}

func TestMigrationWalker_BeginError(t *testing.T) {
	s, _ := setupMockStore(t)
	s.EXPECT().Begin(gomock.Any()).Return(nil, store.ErrBeginningTransaction)

	n, err := NewMigrationWalker(s, testCrypter(t), nil).Run(context.Background(), MigrationOptions{})
	require.ErrorIs(t, err, store.ErrBeginningTransaction)
	assert.Equal(t, 0, n)
}

func TestMigrationWalker_SelectErrorRollsBack(t *testing.T) {
	s, b := setupMockStore(t)
	selectErr := errors.New("connection reset")

	gomock.InOrder(
		s.EXPECT().Begin(gomock.Any()).Return(b, nil),
		b.EXPECT().SelectPendingPlaintext(gomock.Any(), int64(0), 25).Return(nil, selectErr),
		b.EXPECT().Rollback().Return(nil),
	)

	_, err := NewMigrationWalker(s, testCrypter(t), nil).Run(context.Background(), MigrationOptions{BatchSize: 25})
	require.ErrorIs(t, err, selectErr)
}

func TestRotationWalker_BatchProtocol(t *testing.T) {
	ctx := context.Background()
	c := testCrypter(t)
	s, b := setupMockStore(t)
	record := sealedRecord(t, c, 7, 1, map[string]string{"creditor_name": "ACME"})

	var written models.RecordUpdate
	gomock.InOrder(
		s.EXPECT().Begin(gomock.Any()).Return(b, nil),
		b.EXPECT().SelectByVersion(gomock.Any(), 1, int64(0), DefaultBatchSize).Return([]models.Record{record}, nil),
		b.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u models.RecordUpdate) error {
			written = u
			return nil
		}),
		b.EXPECT().Commit().Return(nil),
		b.EXPECT().Rollback().Return(nil),

		s.EXPECT().Begin(gomock.Any()).Return(b, nil),
		b.EXPECT().SelectByVersion(gomock.Any(), 1, int64(7), DefaultBatchSize).Return(nil, nil),
		b.EXPECT().Commit().Return(nil),
		b.EXPECT().Rollback().Return(nil),
	)

	n, err := NewRotationWalker(s, c, nil).Run(ctx, RotationOptions{From: 1, To: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, int64(7), written.ID)
	assert.Equal(t, 2, written.Version)
	assert.Empty(t, written.NullPlain)
	want, err := c.BlindIndex("acme", "creditor_name", 2)
	require.NoError(t, err)
	assert.Equal(t, want, written.Index["creditor_name"])
}
