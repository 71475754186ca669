package series

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Aleph-Alpha/pbseries/v1/flatten"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSink_CreatesHandleOnFirstUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		store.EXPECT().AppendNumeric(ctx, "imu/x", 1.0, 3.5).Return(nil),
		store.EXPECT().AppendNumeric(ctx, "imu/x", 2.0, 4.5).Return(nil),
		store.EXPECT().AppendText(ctx, "imu/tags[0]", 1.0, "a").Return(nil),
	)

	sink := NewSink(store)
	require.NoError(t, sink.Append(ctx, "imu", "x", 1, flatten.NumericValue(3.5)))
	require.NoError(t, sink.Append(ctx, "imu", "x", 2, flatten.NumericValue(4.5)))
	require.NoError(t, sink.Append(ctx, "imu", "tags[0]", 1, flatten.TextValue("a")))

	assert.Equal(t, 2, sink.Len())
	h, ok := sink.Handle("imu", "x")
	require.True(t, ok)
	assert.Equal(t, HandleInfo{Topic: "imu", Key: "x", SeriesKey: "imu/x", Kind: flatten.ValueNumeric, Count: 2}, h)
}

func TestSink_KindConflictDropsPoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	ctx := context.Background()

	store.EXPECT().AppendNumeric(ctx, "t/v", 1.0, 1.0).Return(nil)

	sink := NewSink(store)
	require.NoError(t, sink.Append(ctx, "t", "v", 1, flatten.NumericValue(1)))

	err := sink.Append(ctx, "t", "v", 2, flatten.TextValue("oops"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSeriesTypeConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, flatten.ValueNumeric, conflict.Have)
	assert.Equal(t, flatten.ValueText, conflict.Got)
	assert.Contains(t, err.Error(), `series "v" on topic "t" is numeric, got text`)

	h, _ := sink.Handle("t", "v")
	assert.Equal(t, flatten.ValueNumeric, h.Kind)
	assert.EqualValues(t, 1, h.Count)
}

func TestSink_StoreErrorIsWrapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	boom := errors.New("disk full")

	store.EXPECT().AppendText(gomock.Any(), "t/s", gomock.Any(), "x").Return(boom)

	sink := NewSink(store)
	err := sink.Append(context.Background(), "t", "s", 1, flatten.TextValue("x"))
	assert.ErrorIs(t, err, boom)

	h, ok := sink.Handle("t", "s")
	require.True(t, ok)
	assert.Zero(t, h.Count)
}

func TestSink_TopicsAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	sink := NewSink(store)
	ctx := context.Background()

	require.NoError(t, sink.Append(ctx, "topicA", "x", 1, flatten.NumericValue(1)))
	require.NoError(t, sink.Append(ctx, "topicB", "x", 1, flatten.TextValue("one")))

	handles := sink.Handles()
	require.Len(t, handles, 2)
	assert.Equal(t, "topicA", handles[0].Topic)
	assert.Equal(t, flatten.ValueNumeric, handles[0].Kind)
	assert.Equal(t, "topicB", handles[1].Topic)
	assert.Equal(t, flatten.ValueText, handles[1].Kind)

	assert.Equal(t, []string{"topicA/x", "topicB/x"}, store.Keys())
}

func TestSink_Reset(t *testing.T) {
	sink := NewSink(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, sink.Append(ctx, "t", "v", 1, flatten.NumericValue(1)))
	sink.Reset()
	assert.Zero(t, sink.Len())

	// a reset series may come back with another kind
	require.NoError(t, sink.Append(ctx, "t", "v", 2, flatten.TextValue("now text")))
	h, _ := sink.Handle("t", "v")
	assert.Equal(t, flatten.ValueText, h.Kind)
}

func TestSink_ConcurrentAppendsKeepPerSeriesOrder(t *testing.T) {
	store := NewMemoryStore()
	sink := NewSink(store)
	ctx := context.Background()

	const perTopic = 200
	var wg sync.WaitGroup
	for topic := 0; topic < 4; topic++ {
		wg.Add(1)
		go func(topic int) {
			defer wg.Done()
			name := fmt.Sprintf("t%d", topic)
			for i := 0; i < perTopic; i++ {
				assert.NoError(t, sink.Append(ctx, name, "seq", float64(i), flatten.NumericValue(float64(i))))
			}
		}(topic)
	}
	wg.Wait()

	assert.Equal(t, 4, sink.Len())
	for topic := 0; topic < 4; topic++ {
		samples := store.Numeric(fmt.Sprintf("t%d/seq", topic))
		require.Len(t, samples, perTopic)
		for i, s := range samples {
			assert.Equal(t, float64(i), s.Number)
		}
	}
}

func TestSeriesKey(t *testing.T) {
	assert.Equal(t, "a/b", SeriesKey("a", "b"))
	assert.Equal(t, "b", SeriesKey("", "b"))
}
