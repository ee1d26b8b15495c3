package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/noorhashem/devflow-backend/internal/apperr"
	"github.com/noorhashem/devflow-backend/internal/cache"
	"github.com/noorhashem/devflow-backend/internal/dispatch"
	"github.com/noorhashem/devflow-backend/internal/models"
	"github.com/noorhashem/devflow-backend/internal/repository"
	"github.com/noorhashem/devflow-backend/internal/testutil"
)

type fixture struct {
	db           *gorm.DB
	svc          *AnswerService
	dispatcher   *dispatch.Dispatcher
	questions    repository.QuestionRepo
	answers      repository.AnswerRepo
	votes        repository.VoteRepo
	interactions repository.InteractionRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	logg := testutil.Logger(t)

	dispatcher := dispatch.New(logg, 16)
	t.Cleanup(dispatcher.Close)

	f := &fixture{
		db:           db,
		dispatcher:   dispatcher,
		questions:    repository.NewQuestionRepo(db, logg),
		answers:      repository.NewAnswerRepo(db, logg),
		votes:        repository.NewVoteRepo(db, logg),
		interactions: repository.NewInteractionRepo(db, logg),
	}
	f.svc = NewAnswerService(
		db, f.questions, f.answers, f.votes, f.interactions,
		dispatcher, cache.NewInvalidator(logg), logg,
	)
	return f
}

// drain waits for all queued post-commit tasks to finish.
func (f *fixture) drain() {
	f.dispatcher.Close()
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedQuestion(t *testing.T, db *gorm.DB, authorID, answerCount int) *models.Question {
	t.Helper()
	question := &models.Question{
		Title:       "How do transactions work?",
		Content:     "Details inside.",
		AuthorID:    authorID,
		AnswerCount: answerCount,
	}
	if err := db.Create(question).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return question
}

func seedAnswer(t *testing.T, db *gorm.DB, questionID, authorID int, createdAt time.Time, upvotes int) *models.Answer {
	t.Helper()
	answer := &models.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    "an answer",
		Upvotes:    upvotes,
		CreatedAt:  createdAt,
	}
	if err := db.Create(answer).Error; err != nil {
		t.Fatalf("seed answer: %v", err)
	}
	return answer
}

func seedVote(t *testing.T, db *gorm.DB, voterID, targetID int, targetType string) {
	t.Helper()
	vote := &models.Vote{
		VoterID:    voterID,
		TargetID:   targetID,
		TargetType: targetType,
		Direction:  models.VoteUp,
	}
	if err := db.Create(vote).Error; err != nil {
		t.Fatalf("seed vote: %v", err)
	}
}

func loadQuestion(t *testing.T, db *gorm.DB, id int) *models.Question {
	t.Helper()
	var question models.Question
	if err := db.First(&question, id).Error; err != nil {
		t.Fatalf("load question %d: %v", id, err)
	}
	return &question
}

func countAnswers(t *testing.T, db *gorm.DB, questionID int) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Answer{}).Where("question_id = ?", questionID).Count(&count).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	return count
}

func countVotesFor(t *testing.T, db *gorm.DB, targetID int, targetType string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Vote{}).
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Count(&count).Error; err != nil {
		t.Fatalf("count votes: %v", err)
	}
	return count
}

func TestCreateAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "asker")
	question := seedQuestion(t, f.db, author.ID, 0)

	answer, err := f.svc.Create(ctx, author.ID, question.ID, "  hello world  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if answer.ID == 0 {
		t.Fatalf("Create: expected generated id")
	}
	if answer.Content != "hello world" {
		t.Fatalf("Create: content not trimmed: %q", answer.Content)
	}

	if got := loadQuestion(t, f.db, question.ID).AnswerCount; got != 1 {
		t.Fatalf("answer_count = %d, want 1", got)
	}
	if got := countAnswers(t, f.db, question.ID); got != 1 {
		t.Fatalf("persisted answers = %d, want 1", got)
	}
}

func TestCreateAnswerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 1, 1, "   ")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = f.svc.Create(ctx, 1, 0, "content")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for bad question id, got %v", err)
	}
}

func TestCreateAnswerQuestionNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 1, 12345, "content")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	var count int64
	if err := f.db.Model(&models.Answer{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("answer persisted despite missing question")
	}
}

func TestCreateAnswerLogsInteractionAfterCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "asker")
	question := seedQuestion(t, f.db, author.ID, 0)

	answer, err := f.svc.Create(ctx, author.ID, question.ID, "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.drain()

	var records []models.InteractionRecord
	if err := f.db.Find(&records).Error; err != nil {
		t.Fatalf("load interactions: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("interactions = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.ActorID != author.ID || rec.Verb != "post" || rec.TargetType != models.TargetAnswer || rec.TargetID != answer.ID {
		t.Fatalf("unexpected interaction record: %+v", rec)
	}
}

// A failing interaction sink must not change the outcome or the stored state
// of the primary operation.
func TestCreateAnswerSideEffectFailureIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "asker")
	question := seedQuestion(t, f.db, author.ID, 0)

	logg := testutil.Logger(t)
	svc := NewAnswerService(
		f.db, f.questions, f.answers, f.votes, failingInteractions{},
		f.dispatcher, cache.NewInvalidator(logg), logg,
	)

	answer, err := svc.Create(ctx, author.ID, question.ID, "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.drain()

	if answer.ID == 0 {
		t.Fatalf("expected created answer")
	}
	if got := loadQuestion(t, f.db, question.ID).AnswerCount; got != 1 {
		t.Fatalf("answer_count = %d, want 1", got)
	}
	if got := countAnswers(t, f.db, question.ID); got != 1 {
		t.Fatalf("persisted answers = %d, want 1", got)
	}
}

// If the counter update fails after the answer insert, the whole transaction
// rolls back: no orphan answer, counter untouched.
func TestCreateAnswerAtomicity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "asker")
	question := seedQuestion(t, f.db, author.ID, 2)

	logg := testutil.Logger(t)
	svc := NewAnswerService(
		f.db, failingCounter{f.questions}, f.answers, f.votes, f.interactions,
		f.dispatcher, cache.NewInvalidator(logg), logg,
	)

	_, err := svc.Create(ctx, author.ID, question.ID, "hello")
	if apperr.KindOf(err) != apperr.KindWriteFailed {
		t.Fatalf("expected write failed, got %v", err)
	}

	if got := countAnswers(t, f.db, question.ID); got != 0 {
		t.Fatalf("orphan answer persisted after rollback")
	}
	if got := loadQuestion(t, f.db, question.ID).AnswerCount; got != 2 {
		t.Fatalf("answer_count = %d, want 2", got)
	}
}

func TestDeleteAnswerCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "author")
	voter := seedUser(t, f.db, "voter")
	question := seedQuestion(t, f.db, author.ID, 1)
	answer := seedAnswer(t, f.db, question.ID, author.ID, time.Now(), 0)
	seedVote(t, f.db, voter.ID, answer.ID, models.TargetAnswer)
	seedVote(t, f.db, author.ID, answer.ID, models.TargetAnswer)
	seedVote(t, f.db, voter.ID, question.ID, models.TargetQuestion)

	if err := f.svc.Delete(ctx, author.ID, answer.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got := countVotesFor(t, f.db, answer.ID, models.TargetAnswer); got != 0 {
		t.Fatalf("votes on deleted answer = %d, want 0", got)
	}
	// Votes on the question itself are untouched.
	if got := countVotesFor(t, f.db, question.ID, models.TargetQuestion); got != 1 {
		t.Fatalf("question votes = %d, want 1", got)
	}
	if got := loadQuestion(t, f.db, question.ID).AnswerCount; got != 0 {
		t.Fatalf("answer_count = %d, want 0", got)
	}
	if got := countAnswers(t, f.db, question.ID); got != 0 {
		t.Fatalf("answer still present after delete")
	}
}

func TestDeleteAnswerForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "author")
	intruder := seedUser(t, f.db, "intruder")
	question := seedQuestion(t, f.db, author.ID, 1)
	answer := seedAnswer(t, f.db, question.ID, author.ID, time.Now(), 0)
	seedVote(t, f.db, intruder.ID, answer.ID, models.TargetAnswer)

	err := f.svc.Delete(ctx, intruder.ID, answer.ID)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// Nothing was touched.
	if got := loadQuestion(t, f.db, question.ID).AnswerCount; got != 1 {
		t.Fatalf("answer_count = %d, want 1", got)
	}
	if got := countAnswers(t, f.db, question.ID); got != 1 {
		t.Fatalf("answer removed by non-author")
	}
	if got := countVotesFor(t, f.db, answer.ID, models.TargetAnswer); got != 1 {
		t.Fatalf("votes removed by non-author")
	}
}

func TestDeleteAnswerNotFound(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Delete(context.Background(), 1, 99999)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

// The parent question being gone does not block answer deletion.
func TestDeleteAnswerOrphanTolerance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "author")
	question := seedQuestion(t, f.db, author.ID, 1)
	answer := seedAnswer(t, f.db, question.ID, author.ID, time.Now(), 0)

	if err := f.db.Delete(&models.Question{}, question.ID).Error; err != nil {
		t.Fatalf("remove question: %v", err)
	}

	if err := f.svc.Delete(ctx, author.ID, answer.ID); err != nil {
		t.Fatalf("Delete with orphaned answer: %v", err)
	}
	if got := countAnswers(t, f.db, question.ID); got != 0 {
		t.Fatalf("orphaned answer still present")
	}
}

// The decrement guard keeps a drifted counter from going negative.
func TestDeleteAnswerCounterFloor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "author")
	question := seedQuestion(t, f.db, author.ID, 0)
	answer := seedAnswer(t, f.db, question.ID, author.ID, time.Now(), 0)

	if err := f.svc.Delete(ctx, author.ID, answer.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := loadQuestion(t, f.db, question.ID).AnswerCount; got != 0 {
		t.Fatalf("answer_count = %d, want 0", got)
	}
}

// If the final answer delete fails, the counter decrement and the vote
// cleanup issued before it are rolled back with it.
func TestDeleteAnswerAtomicity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "author")
	question := seedQuestion(t, f.db, author.ID, 1)
	answer := seedAnswer(t, f.db, question.ID, author.ID, time.Now(), 0)
	seedVote(t, f.db, author.ID, answer.ID, models.TargetAnswer)

	logg := testutil.Logger(t)
	svc := NewAnswerService(
		f.db, f.questions, failingDelete{f.answers}, f.votes, f.interactions,
		f.dispatcher, cache.NewInvalidator(logg), logg,
	)

	err := svc.Delete(ctx, author.ID, answer.ID)
	if apperr.KindOf(err) != apperr.KindWriteFailed {
		t.Fatalf("expected write failed, got %v", err)
	}

	if got := loadQuestion(t, f.db, question.ID).AnswerCount; got != 1 {
		t.Fatalf("answer_count = %d, want 1 after rollback", got)
	}
	if got := countVotesFor(t, f.db, answer.ID, models.TargetAnswer); got != 1 {
		t.Fatalf("votes = %d, want 1 after rollback", got)
	}
	if got := countAnswers(t, f.db, question.ID); got != 1 {
		t.Fatalf("answer missing after rollback")
	}
}

// The end-to-end sequence from the design review: create bumps 2 -> 3,
// delete drops back to 2, second delete reports not found.
func TestAnswerLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "author")
	voter := seedUser(t, f.db, "voter")
	question := seedQuestion(t, f.db, author.ID, 2)

	answer, err := f.svc.Create(ctx, author.ID, question.ID, "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := loadQuestion(t, f.db, question.ID).AnswerCount; got != 3 {
		t.Fatalf("answer_count = %d, want 3", got)
	}

	seedVote(t, f.db, voter.ID, answer.ID, models.TargetAnswer)

	if err := f.svc.Delete(ctx, author.ID, answer.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := loadQuestion(t, f.db, question.ID).AnswerCount; got != 2 {
		t.Fatalf("answer_count = %d, want 2", got)
	}
	if got := countVotesFor(t, f.db, answer.ID, models.TargetAnswer); got != 0 {
		t.Fatalf("votes on deleted answer = %d, want 0", got)
	}

	err = f.svc.Delete(ctx, author.ID, answer.ID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestListAnswersPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "author")
	question := seedQuestion(t, f.db, author.ID, 5)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []int
	for i := 0; i < 5; i++ {
		a := seedAnswer(t, f.db, question.ID, author.ID, base.Add(time.Duration(i)*time.Minute), i)
		ids = append(ids, a.ID)
	}

	seen := map[int]bool{}
	var order []int
	for page := 1; page <= 3; page++ {
		result, err := f.svc.List(ctx, question.ID, page, 2, FilterLatest)
		if err != nil {
			t.Fatalf("List page %d: %v", page, err)
		}
		if result.TotalCount != 5 {
			t.Fatalf("page %d: total = %d, want 5", page, result.TotalCount)
		}
		wantLen := 2
		if page == 3 {
			wantLen = 1
		}
		if len(result.Items) != wantLen {
			t.Fatalf("page %d: len = %d, want %d", page, len(result.Items), wantLen)
		}
		wantNext := page < 3
		if result.HasNext != wantNext {
			t.Fatalf("page %d: has_next = %v, want %v", page, result.HasNext, wantNext)
		}
		for _, item := range result.Items {
			if seen[item.ID] {
				t.Fatalf("page %d: duplicate answer %d across pages", page, item.ID)
			}
			seen[item.ID] = true
			order = append(order, item.ID)
		}
	}
	if len(seen) != 5 {
		t.Fatalf("pages are not a partition: saw %d of 5", len(seen))
	}
	// latest means newest first.
	for i, id := range order {
		if want := ids[4-i]; id != want {
			t.Fatalf("position %d: got answer %d, want %d", i, id, want)
		}
	}
}

func TestListAnswersFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := seedUser(t, f.db, "author")
	question := seedQuestion(t, f.db, author.ID, 3)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := seedAnswer(t, f.db, question.ID, author.ID, base, 5)
	middle := seedAnswer(t, f.db, question.ID, author.ID, base.Add(time.Minute), 1)
	newest := seedAnswer(t, f.db, question.ID, author.ID, base.Add(2*time.Minute), 3)

	cases := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"default", FilterDefault, []int{newest.ID, middle.ID, oldest.ID}},
		{"latest", FilterLatest, []int{newest.ID, middle.ID, oldest.ID}},
		{"oldest", FilterOldest, []int{oldest.ID, middle.ID, newest.ID}},
		{"popular", FilterPopular, []int{oldest.ID, newest.ID, middle.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := f.svc.List(ctx, question.ID, 1, 10, tc.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(result.Items) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(result.Items), len(tc.want))
			}
			for i, item := range result.Items {
				if item.ID != tc.want[i] {
					t.Fatalf("position %d: got %d, want %v", i, item.ID, tc.want)
				}
			}
			if result.HasNext {
				t.Fatalf("has_next = true on a complete single page")
			}
		})
	}
}

func TestListAnswersEmpty(t *testing.T) {
	f := newFixture(t)
	author := seedUser(t, f.db, "author")
	question := seedQuestion(t, f.db, author.ID, 0)

	result, err := f.svc.List(context.Background(), question.ID, 1, 10, FilterDefault)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Items == nil || len(result.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", result.Items)
	}
	if result.TotalCount != 0 || result.HasNext {
		t.Fatalf("unexpected page meta: %+v", result)
	}
}

func TestParseFilter(t *testing.T) {
	for _, raw := range []string{"", "latest", "oldest", "popular"} {
		if _, err := ParseFilter(raw); err != nil {
			t.Fatalf("ParseFilter(%q): %v", raw, err)
		}
	}
	_, err := ParseFilter("trending")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// --- failure-injecting doubles ---

type failingInteractions struct{}

func (failingInteractions) Create(context.Context, *models.InteractionRecord) error {
	return errors.New("interaction sink unavailable")
}

type failingCounter struct {
	repository.QuestionRepo
}

func (failingCounter) AdjustAnswerCount(context.Context, *gorm.DB, int, int) (int64, error) {
	return 0, fmt.Errorf("counter update rejected")
}

type failingDelete struct {
	repository.AnswerRepo
}

func (failingDelete) Delete(context.Context, *gorm.DB, int) (int64, error) {
	return 0, fmt.Errorf("delete rejected")
}
