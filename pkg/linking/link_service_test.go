package linking

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/testutil"
	"pricecrowd-backend/pkg/user"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fixture struct {
	svc   *linkService
	db    *gorm.DB
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(&entities.User{Username: "alice"}).Error)

	f := &fixture{db: db, clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.svc = NewLinkService(NewLinkRepository(db), user.NewUserRepository(db), logging.Nop()).(*linkService)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) user(t *testing.T) entities.User {
	t.Helper()
	var u entities.User
	require.NoError(t, f.db.Where("username = ?", "alice").Take(&u).Error)
	return u
}

func TestIssue_CodeShapeAndExpiry(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Issue(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, res.Code, CodeLength)
	assert.Equal(t, res.Code, NormalizeCode(res.Code))
	assert.True(t, res.ExpAt.Equal(f.clock.Add(15*time.Minute)))
}

func TestConsume_LinksOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Issue(ctx, "alice")
	require.NoError(t, err)

	display := "alice_tg"
	ok, err := f.svc.Consume(ctx, res.Code, 4242, &display)
	require.NoError(t, err)
	assert.True(t, ok)

	u := f.user(t)
	require.NotNil(t, u.TelegramID)
	assert.Equal(t, int64(4242), *u.TelegramID)
	require.NotNil(t, u.TelegramUsername)
	assert.Equal(t, "alice_tg", *u.TelegramUsername)

	ok, err = f.svc.Consume(ctx, res.Code, 9999, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(4242), *f.user(t).TelegramID)
}

func TestConsume_CaseInsensitive(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Issue(context.Background(), "alice")
	require.NoError(t, err)

	ok, err := f.svc.Consume(context.Background(), "  "+strings.ToLower(res.Code)+" ", 7, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, f.user(t).TelegramUsername)
}

func TestConsume_Expired(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Issue(context.Background(), "alice")
	require.NoError(t, err)

	f.clock = f.clock.Add(16 * time.Minute)
	ok, err := f.svc.Consume(context.Background(), res.Code, 1, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, f.user(t).TelegramID)
}

func TestConsume_UnknownOrMalformed(t *testing.T) {
	f := newFixture(t)
	for _, code := range []string{"ZZZZZZ", "", "ABC", "ABCDEFG", "AB-CDE"} {
		ok, err := f.svc.Consume(context.Background(), code, 1, nil)
		require.NoError(t, err, code)
		assert.False(t, ok, code)
	}
}

func TestConsume_CodeForDeletedUserIsBurned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Issue(ctx, "ghost")
	require.NoError(t, err)

	ok, err := f.svc.Consume(ctx, res.Code, 1, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	var link entities.LinkCode
	require.NoError(t, f.db.Where("code = ?", res.Code).Take(&link).Error)
	assert.True(t, link.Used)
}

func TestConsume_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Issue(context.Background(), "alice")
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(chat int64) {
			defer wg.Done()
			ok, err := f.svc.Consume(context.Background(), res.Code, chat, nil)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}(int64(i + 1))
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestStatusAndUnlink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, st.Linked)

	res, err := f.svc.Issue(ctx, "alice")
	require.NoError(t, err)
	name := "al"
	ok, err := f.svc.Consume(ctx, res.Code, 5, &name)
	require.NoError(t, err)
	require.True(t, ok)

	st, err = f.svc.Status(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, st.Linked)
	require.NotNil(t, st.TelegramUsername)
	assert.Equal(t, "al", *st.TelegramUsername)

	require.NoError(t, f.svc.Unlink(ctx, "alice"))
	st, err = f.svc.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, st.Linked)
	assert.Nil(t, st.TelegramUsername)

	_, err = f.svc.Status(ctx, "nobody")
	assert.Error(t, err)
}
