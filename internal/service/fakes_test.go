package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/events"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories mirroring the Mongo implementations closely enough
// for service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *fakeUserRepo) add(name, email string, role domain.Role) *domain.User {
	u := &domain.User{ID: primitive.NewObjectID(), Name: name, Email: email, Role: role}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	r.users[user.ID] = &cp
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role, specialty string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		if u.Role != role {
			continue
		}
		if specialty != "" && !strings.Contains(strings.ToLower(u.Profile.Specialty), strings.ToLower(specialty)) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, name string, profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = name
	u.Profile = profile
	return nil
}

func (r *fakeUserRepo) SetProfileImage(_ context.Context, id primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ProfileImageKey = key
	return nil
}

func (r *fakeUserRepo) AddClientIDToTrainer(_ context.Context, trainerID, clientID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.users[trainerID]
	if !ok || t.Role != domain.RoleTrainer {
		return repository.ErrNotFound
	}
	for _, id := range t.ClientIDs {
		if id == clientID {
			return nil
		}
	}
	t.ClientIDs = append(t.ClientIDs, clientID)
	return nil
}

func (r *fakeUserRepo) GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	t, err := r.GetByID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	return r.GetByIDs(ctx, t.ClientIDs)
}

func (r *fakeUserRepo) SetTrainerForClient(_ context.Context, clientID, trainerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.users[clientID]
	if !ok || c.Role != domain.RoleClient {
		return repository.ErrNotFound
	}
	c.TrainerID = &trainerID
	return nil
}

type fakeExerciseRepo struct {
	mu        sync.Mutex
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: map[primitive.ObjectID]*domain.Exercise{}}
}

func (r *fakeExerciseRepo) add(trainerID primitive.ObjectID, name, muscleGroup string) *domain.Exercise {
	e := &domain.Exercise{ID: primitive.NewObjectID(), TrainerID: trainerID, Name: name, MuscleGroup: muscleGroup}
	r.exercises[e.ID] = e
	return e
}

func (r *fakeExerciseRepo) Create(_ context.Context, e *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = primitive.NewObjectID()
	cp := *e
	r.exercises[e.ID] = &cp
	return e.ID, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExerciseRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Exercise{}
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) List(_ context.Context, f domain.ExerciseFilter) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Exercise{}
	for _, e := range r.exercises {
		if f.TrainerID != nil && e.TrainerID != *f.TrainerID {
			continue
		}
		if f.MuscleGroup != "" && !strings.EqualFold(e.MuscleGroup, f.MuscleGroup) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeExerciseRepo) Update(_ context.Context, e *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[e.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *e
	r.exercises[e.ID] = &cp
	return nil
}

func (r *fakeExerciseRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok || e.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

type fakeRoutineRepo struct {
	mu       sync.Mutex
	routines map[primitive.ObjectID]*domain.Routine
	links    []domain.RoutineExercise

	addErr    error
	deleteErr error
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{routines: map[primitive.ObjectID]*domain.Routine{}}
}

func (r *fakeRoutineRepo) Create(_ context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	routine.ID = primitive.NewObjectID()
	routine.CreatedAt = time.Now().UTC()
	cp := *routine
	r.routines[routine.ID] = &cp
	return routine.ID, nil
}

func (r *fakeRoutineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	routine, ok := r.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *routine
	return &cp, nil
}

func (r *fakeRoutineRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Routine{}
	for _, routine := range r.routines {
		if routine.TrainerID == trainerID {
			out = append(out, *routine)
		}
	}
	return out, nil
}

func (r *fakeRoutineRepo) Update(_ context.Context, routine *domain.Routine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routines[routine.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *routine
	r.routines[routine.ID] = &cp
	return nil
}

func (r *fakeRoutineRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.links[:0]
	for _, l := range r.links {
		if l.RoutineID != id {
			kept = append(kept, l)
		}
	}
	r.links = kept
	if _, ok := r.routines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.routines, id)
	return nil
}

func (r *fakeRoutineRepo) AddExercises(_ context.Context, links []domain.RoutineExercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	for i := range links {
		links[i].ID = primitive.NewObjectID()
		r.links = append(r.links, links[i])
	}
	return nil
}

func (r *fakeRoutineRepo) GetExercises(_ context.Context, routineID primitive.ObjectID) ([]domain.RoutineExercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.RoutineExercise{}
	for _, l := range r.links {
		if l.RoutineID == routineID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeRoutineRepo) RemoveExercise(_ context.Context, routineID, linkID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.links {
		if l.ID == linkID && l.RoutineID == routineID {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRoutineRepo) CountExercises(ctx context.Context, routineID primitive.ObjectID) (int64, error) {
	links, _ := r.GetExercises(ctx, routineID)
	return int64(len(links)), nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[primitive.ObjectID]*domain.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: map[primitive.ObjectID]*domain.Assignment{}}
}

func (r *fakeAssignmentRepo) Create(_ context.Context, a *domain.Assignment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = primitive.NewObjectID()
	a.AssignedAt = time.Now().UTC()
	cp := *a
	r.assignments[a.ID] = &cp
	return a.ID, nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAssignmentRepo) list(match func(*domain.Assignment) bool, status domain.AssignmentStatus) []domain.Assignment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Assignment{}
	for _, a := range r.assignments {
		if match(a) && (status == "" || a.Status == status) {
			out = append(out, *a)
		}
	}
	return out
}

func (r *fakeAssignmentRepo) GetByClientID(_ context.Context, clientID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error) {
	return r.list(func(a *domain.Assignment) bool { return a.ClientID == clientID }, status), nil
}

func (r *fakeAssignmentRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.Assignment, error) {
	return r.list(func(a *domain.Assignment) bool { return a.TrainerID == trainerID }, status), nil
}

func (r *fakeAssignmentRepo) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to domain.AssignmentStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok || a.Status != from {
		return repository.ErrNotFound
	}
	a.Status = to
	a.UpdatedAt = at
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[primitive.ObjectID]*domain.Message
	clock    time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: map[primitive.ObjectID]*domain.Message{},
		clock:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Create stamps strictly increasing SentAt values so ordering is deterministic.
func (r *fakeMessageRepo) Create(_ context.Context, m *domain.Message) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Minute)
	m.ID = primitive.NewObjectID()
	m.SentAt = r.clock
	cp := *m
	r.messages[m.ID] = &cp
	return m.ID, nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMessageRepo) sorted(match func(*domain.Message) bool, newestFirst bool) []domain.Message {
	out := []domain.Message{}
	for _, m := range r.messages {
		if match(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].SentAt.After(out[j].SentAt)
		}
		return out[i].SentAt.Before(out[j].SentAt)
	})
	return out
}

func (r *fakeMessageRepo) GetByParticipant(_ context.Context, userID primitive.ObjectID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(m *domain.Message) bool { return m.SenderID == userID || m.ReceiverID == userID }, true), nil
}

func (r *fakeMessageRepo) GetThread(_ context.Context, userID, counterpartID primitive.ObjectID, limit int64) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted(func(m *domain.Message) bool {
		return (m.SenderID == userID && m.ReceiverID == counterpartID) || (m.SenderID == counterpartID && m.ReceiverID == userID)
	}, false)
	if limit > 0 && int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok || m.Read {
		return false, nil
	}
	m.Read = true
	m.ReadAt = &at
	return true, nil
}

func (r *fakeMessageRepo) MarkThreadRead(_ context.Context, receiverID, senderID primitive.ObjectID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.Read {
			m.Read = true
			m.ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, receiverID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ReceiverID == receiverID && !m.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.messages, id)
	return nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]*domain.Review
	clock   time.Time
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[primitive.ObjectID]*domain.Review{}, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *fakeReviewRepo) Create(_ context.Context, review *domain.Review) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.AuthorID == review.AuthorID && existing.TrainerID == review.TrainerID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	r.clock = r.clock.Add(time.Hour)
	review.ID = primitive.NewObjectID()
	review.CreatedAt = r.clock
	cp := *review
	r.reviews[review.ID] = &cp
	return review.ID, nil
}

func (r *fakeReviewRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *review
	return &cp, nil
}

func (r *fakeReviewRepo) GetByAuthorAndTrainer(_ context.Context, authorID, trainerID primitive.ObjectID) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, review := range r.reviews {
		if review.AuthorID == authorID && review.TrainerID == trainerID {
			cp := *review
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeReviewRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Review{}
	for _, review := range r.reviews {
		if review.TrainerID == trainerID {
			out = append(out, *review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeReviewRepo) Update(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *review
	r.reviews[review.ID] = &cp
	return nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[primitive.ObjectID]*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[primitive.ObjectID]*domain.Payment{}}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *domain.Payment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.Status = domain.PaymentPending
	cp := *p
	r.payments[p.ID] = &cp
	return p.ID, nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) GetByIntentID(_ context.Context, intentID string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ProcessorIntentID == intentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePaymentRepo) GetByParticipant(_ context.Context, userID primitive.ObjectID) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Payment{}
	for _, p := range r.payments {
		if p.IsParticipant(userID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) SetIntent(_ context.Context, id primitive.ObjectID, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.ProcessorIntentID = intentID
	return nil
}

func (r *fakePaymentRepo) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to domain.PaymentStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != from {
		return repository.ErrNotFound
	}
	p.Status = to
	p.UpdatedAt = at
	switch to {
	case domain.PaymentConfirmed:
		p.ConfirmedAt = &at
	case domain.PaymentCancelled:
		p.CancelledAt = &at
	}
	return nil
}

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[primitive.ObjectID]*domain.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: map[primitive.ObjectID]*domain.Subscription{}}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, s *domain.Subscription) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = primitive.NewObjectID()
	s.Active = true
	cp := *s
	r.subs[s.ID] = &cp
	return s.ID, nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriptionRepo) GetActive(_ context.Context, clientID, trainerID primitive.ObjectID) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ClientID == clientID && s.TrainerID == trainerID && s.Active {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSubscriptionRepo) GetByParticipant(_ context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Subscription{}
	for _, s := range r.subs {
		if s.IsParticipant(userID) && (!activeOnly || s.Active) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Deactivate(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok || !s.Active {
		return repository.ErrNotFound
	}
	s.Active = false
	s.CancelledAt = &at
	return nil
}

type fakeGeneratedRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*domain.GeneratedRoutine
}

func newFakeGeneratedRepo() *fakeGeneratedRepo {
	return &fakeGeneratedRepo{items: map[primitive.ObjectID]*domain.GeneratedRoutine{}}
}

func (r *fakeGeneratedRepo) Create(_ context.Context, gr *domain.GeneratedRoutine) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gr.ID = primitive.NewObjectID()
	cp := *gr
	r.items[gr.ID] = &cp
	return gr.ID, nil
}

func (r *fakeGeneratedRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.GeneratedRoutine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gr, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *gr
	return &cp, nil
}

func (r *fakeGeneratedRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.GeneratedRoutine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.GeneratedRoutine{}
	for _, gr := range r.items {
		if gr.UserID == userID {
			out = append(out, *gr)
		}
	}
	return out, nil
}

func (r *fakeGeneratedRepo) SetSavedRoutine(_ context.Context, id, routineID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	gr, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	gr.SavedRoutineID = &routineID
	return nil
}

// recordingPublisher keeps every published event type.
type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.Type)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}
