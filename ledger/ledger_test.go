package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SiriusLupin/deive-borrow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore 記憶體版 RecordStore，依寫入順序保存紀錄
type memStore struct {
	recs      []models.LoanRecord
	appendErr error
	allErr    error
	closeErr  error
}

func (s *memStore) Append(_ context.Context, rec *models.LoanRecord) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.recs = append(s.recs, *rec)
	return nil
}

func (s *memStore) All(_ context.Context) ([]models.LoanRecord, error) {
	if s.allErr != nil {
		return nil, s.allErr
	}
	out := make([]models.LoanRecord, len(s.recs))
	copy(out, s.recs)
	return out, nil
}

func (s *memStore) FindOpenByDevice(_ context.Context, deviceID string) (*models.LoanRecord, error) {
	for i := len(s.recs) - 1; i >= 0; i-- {
		if s.recs[i].DeviceID == deviceID && s.recs[i].Open() {
			rec := s.recs[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *memStore) Close(_ context.Context, id string, returnedAt time.Time) error {
	if s.closeErr != nil {
		return s.closeErr
	}
	for i := range s.recs {
		if s.recs[i].ID == id && s.recs[i].Open() {
			t := returnedAt
			s.recs[i].Status = models.StatusReturned
			s.recs[i].ReturnedAt = &t
			s.recs[i].Note = ""
			return nil
		}
	}
	return errors.New("record not found")
}

func (s *memStore) History(_ context.Context, deviceID string) ([]models.LoanRecord, error) {
	var out []models.LoanRecord
	for i := len(s.recs) - 1; i >= 0; i-- {
		if deviceID == "" || s.recs[i].DeviceID == deviceID {
			out = append(out, s.recs[i])
		}
	}
	return out, nil
}

func newTestLedger(store *memStore, now time.Time) *Ledger {
	l := New(store, nil, nil)
	l.now = func() time.Time { return now }
	return l
}

func validBorrow() BorrowRequest {
	return BorrowRequest{
		Borrower:         "王小明",
		DeviceType:       "筆電",
		Purpose:          "一般用途",
		DeviceID:         "nb05",
		ExpectedDuration: models.DurationShort,
		Note:             "出差用",
	}
}

func TestBorrow_CreatesOpenRecord(t *testing.T) {
	store := &memStore{}
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	l := newTestLedger(store, now)

	rec, err := l.Borrow(context.Background(), validBorrow())
	require.NoError(t, err)
	require.Len(t, store.recs, 1)
	assert.Equal(t, "NB05", rec.DeviceID)
	assert.Equal(t, models.StatusBorrowed, rec.Status)
	assert.Equal(t, now, rec.BorrowedAt)
	assert.Nil(t, rec.ReturnedAt)
	assert.NotEmpty(t, rec.ID)
}

func TestBorrow_CanonicalizesDeviceID(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(store, time.Now())

	req := validBorrow()
	req.DeviceID = "  nb10 "
	req.Purpose = "影像剪輯或照片編輯"

	rec, err := l.Borrow(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "NB10", rec.DeviceID)
}

func TestBorrow_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BorrowRequest)
		field  string
	}{
		{"blank borrower", func(r *BorrowRequest) { r.Borrower = "  " }, "borrower"},
		{"blank device id", func(r *BorrowRequest) { r.DeviceID = "" }, "deviceId"},
		{"unknown device type", func(r *BorrowRequest) { r.DeviceType = "電冰箱" }, "deviceType"},
		{"purpose not in menu", func(r *BorrowRequest) { r.Purpose = "打電動" }, "purpose"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			l := newTestLedger(store, time.Now())

			req := validBorrow()
			tt.mutate(&req)

			_, err := l.Borrow(context.Background(), req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, store.recs, "validation failure must not touch the store")
		})
	}
}

func TestBorrow_DedicatedDeviceForItsPurpose(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(store, time.Now())

	req := validBorrow()
	req.DeviceID = "nb12"
	req.Purpose = "OBS直播"

	rec, err := l.Borrow(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "NB12", rec.DeviceID)
	assert.Equal(t, models.StatusBorrowed, rec.Status)
}

func TestBorrow_DedicatedDeviceRejectsOtherPurpose(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(store, time.Now())

	req := validBorrow()
	req.DeviceID = "nb12"
	req.Purpose = "一般用途"

	_, err := l.Borrow(context.Background(), req)
	var ee *EligibilityError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "NB12", ee.DeviceID)
	assert.Equal(t, "OBS直播", ee.Dedicated)
	assert.Empty(t, store.recs, "rejected borrow must not append a record")
}

func TestBorrow_OtherPurposeRequiresExplanation(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(store, time.Now())

	req := validBorrow()
	req.Purpose = "其他"
	req.OtherExplanation = ""

	_, err := l.Borrow(context.Background(), req)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "otherExplanation", ve.Field)

	req.OtherExplanation = "院慶活動拍攝"
	rec, err := l.Borrow(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "院慶活動拍攝", rec.Purpose, "free-text purpose goes into the stored purpose field")
}

func TestBorrow_AlreadyBorrowed(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(store, time.Now())

	_, err := l.Borrow(context.Background(), validBorrow())
	require.NoError(t, err)

	_, err = l.Borrow(context.Background(), validBorrow())
	assert.ErrorIs(t, err, ErrAlreadyBorrowed)
	assert.Len(t, store.recs, 1)
}

func TestBorrow_StoreWriteError(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	store := &memStore{appendErr: wantErr}
	l := newTestLedger(store, time.Now())

	_, err := l.Borrow(context.Background(), validBorrow())
	assert.ErrorIs(t, err, wantErr)
}

func TestReturn_ClosesMostRecentOpenRecord(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)
	store := &memStore{recs: []models.LoanRecord{
		{ID: "old", DeviceID: "NB05", Status: models.StatusBorrowed, BorrowedAt: base, Note: "第一次"},
		{ID: "new", DeviceID: "NB05", Status: models.StatusBorrowed, BorrowedAt: base.Add(48 * time.Hour), Note: "第二次"},
	}}
	now := base.Add(72 * time.Hour)
	l := newTestLedger(store, now)

	rec, err := l.Return(context.Background(), "nb05")
	require.NoError(t, err)
	assert.Equal(t, "new", rec.ID)
	assert.Equal(t, models.StatusReturned, rec.Status)
	require.NotNil(t, rec.ReturnedAt)
	assert.Equal(t, now, *rec.ReturnedAt)
	assert.Empty(t, rec.Note)

	// 舊的那筆不動
	assert.Equal(t, models.StatusBorrowed, store.recs[0].Status)
	assert.Equal(t, "第一次", store.recs[0].Note)
	// 新的那筆結案且備註清空
	assert.Equal(t, models.StatusReturned, store.recs[1].Status)
	assert.Empty(t, store.recs[1].Note)
}

func TestReturn_NotFound(t *testing.T) {
	store := &memStore{recs: []models.LoanRecord{
		{ID: "r1", DeviceID: "NB05", Status: models.StatusReturned, BorrowedAt: time.Now()},
	}}
	l := newTestLedger(store, time.Now())

	_, err := l.Return(context.Background(), "NB99")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Return(context.Background(), "NB05")
	assert.ErrorIs(t, err, ErrNotFound, "already-returned record is not an open loan")
	assert.Equal(t, models.StatusReturned, store.recs[0].Status)
}

func TestReturn_BlankDeviceID(t *testing.T) {
	l := newTestLedger(&memStore{}, time.Now())
	_, err := l.Return(context.Background(), "   ")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

// fakeLocker 記錄鎖的取得與釋放順序
type fakeLocker struct {
	acquired []string
	released int
	err      error
}

func (f *fakeLocker) Acquire(_ context.Context, deviceID string) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.acquired = append(f.acquired, deviceID)
	return func() { f.released++ }, nil
}

func TestBorrow_HoldsDeviceLock(t *testing.T) {
	store := &memStore{}
	locks := &fakeLocker{}
	l := New(store, locks, nil)

	_, err := l.Borrow(context.Background(), validBorrow())
	require.NoError(t, err)
	assert.Equal(t, []string{"NB05"}, locks.acquired)
	assert.Equal(t, 1, locks.released)
}

func TestBorrow_LockBusy(t *testing.T) {
	busy := errors.New("device is being processed, try again")
	store := &memStore{}
	l := New(store, &fakeLocker{err: busy}, nil)

	_, err := l.Borrow(context.Background(), validBorrow())
	assert.ErrorIs(t, err, busy)
	assert.Empty(t, store.recs)
}

func TestRoundTrip_BorrowThenListActive(t *testing.T) {
	store := &memStore{}
	l := newTestLedger(store, time.Now())

	req := validBorrow()
	req.DeviceID = "nb10"
	req.Purpose = "影像剪輯或照片編輯"
	_, err := l.Borrow(context.Background(), req)
	require.NoError(t, err)

	groups, err := l.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, groups["筆電"], 1)
	assert.Equal(t, "NB10", groups["筆電"][0].DeviceID)
}
