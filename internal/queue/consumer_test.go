package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/skillmatch/internal/config"
	"github.com/hyperjump/skillmatch/internal/indexer"
	"github.com/hyperjump/skillmatch/internal/models"
)

type fakeAdder struct {
	got [][]models.SkillRecord
	err error
}

func (f *fakeAdder) AddSkills(_ context.Context, records []models.SkillRecord) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = append(f.got, records)
	return make([]int, len(records)), nil
}

type fakeDelivery struct {
	acked, nacked, requeued bool
}

func (d *fakeDelivery) Ack(bool) error { d.acked = true; return nil }
func (d *fakeDelivery) Nack(_, requeue bool) error {
	d.nacked = true
	d.requeued = requeue
	return nil
}

func TestHandleBody(t *testing.T) {
	adder := &fakeAdder{}
	c := NewConsumer(config.QueueConfig{Name: "skill_submissions"}, adder, nil)

	body := []byte(`{"user_id": "u-7", "skills": [
		{"skill_name": "Python", "proficiency_level": "advanced", "years_of_experience": 3, "metadata": {"skill_id": 12}},
		{"skill_name": "SQL", "metadata": {"user_id": "other"}}
	]}`)
	assert.Equal(t, Ack, c.HandleBody(context.Background(), body))
	require.Len(t, adder.got, 1)
	records := adder.got[0]
	require.Len(t, records, 2)
	assert.Equal(t, models.Metadata{"skill_id": float64(12), "user_id": "u-7"}, records[0].Metadata)
	assert.Equal(t, "other", records[1].Metadata["user_id"], "existing user_id is kept")
}

func TestHandleBody_rejectsInvalid(t *testing.T) {
	adder := &fakeAdder{}
	c := NewConsumer(config.QueueConfig{}, adder, nil)
	for _, body := range []string{
		`not json`,
		`{"skills": []}`,
		`{"skills": [{"years_of_experience": 2}]}`,
		`{"skills": [{"skill_name": "Go", "proficiency_level": "wizard"}]}`,
	} {
		assert.Equal(t, Reject, c.HandleBody(context.Background(), []byte(body)), body)
	}
	assert.Empty(t, adder.got)
}

func TestHandleBody_persistenceFailureRequeues(t *testing.T) {
	perr := &indexer.PersistenceError{Op: "save", Key: "skills_index", Err: errors.New("bucket unavailable")}
	c := NewConsumer(config.QueueConfig{}, &fakeAdder{err: perr}, nil)
	assert.Equal(t, Requeue, c.HandleBody(context.Background(), []byte(`{"skills": [{"skill_name": "Go"}]}`)))

	c = NewConsumer(config.QueueConfig{}, &fakeAdder{err: errors.New("boom")}, nil)
	assert.Equal(t, Reject, c.HandleBody(context.Background(), []byte(`{"skills": [{"skill_name": "Go"}]}`)))
}

func TestSettle(t *testing.T) {
	d := &fakeDelivery{}
	require.NoError(t, settle(d, Ack))
	assert.True(t, d.acked)
	assert.False(t, d.nacked)

	d = &fakeDelivery{}
	require.NoError(t, settle(d, Reject))
	assert.True(t, d.nacked)
	assert.False(t, d.requeued)

	d = &fakeDelivery{}
	require.NoError(t, settle(d, Requeue))
	assert.True(t, d.nacked)
	assert.True(t, d.requeued)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ack", Ack.String())
	assert.Equal(t, "reject", Reject.String())
	assert.Equal(t, "requeue", Requeue.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}
