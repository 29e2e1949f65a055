package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/community-roster/internal/application"
	"github.com/example/community-roster/internal/config"
	httptransport "github.com/example/community-roster/internal/http"
	"github.com/example/community-roster/internal/logging"
	"github.com/example/community-roster/internal/persistence"
	"github.com/example/community-roster/internal/persistence/sqlite"
	"github.com/example/community-roster/internal/roster"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	location, err := cfg.Location()
	if err != nil {
		logger.Error("failed to resolve timezone", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	memberRepo := newMemberRepositoryAdapter(sqlite.NewMemberRepository(storage))
	dutyRepo := newDutyRepositoryAdapter(sqlite.NewDutyRepository(storage))
	sessionStore := newSessionStoreAdapter(sqlite.NewSessionRepository(storage))
	templateStore := newTemplateStoreAdapter(sqlite.NewTemplateRepository(storage))

	memberService := application.NewMemberService(memberRepo, idGenerator, now, logger)
	dutyService := application.NewDutyService(dutyRepo, memberRepo, idGenerator, now, location, logger)
	authService := application.NewAuthService(memberRepo, sessionStore, cfg.SessionSecret, cfg.SessionTTL, idGenerator, now, logger)
	messageService := application.NewMessageService(templateStore, dutyRepo, memberRepo, now, logger)

	if cfg.TemplateSeedPath != "" {
		data, err := os.ReadFile(cfg.TemplateSeedPath)
		if err != nil {
			logger.Error("failed to read template seed catalog", "error", err, "path", cfg.TemplateSeedPath)
			os.Exit(1)
		}
		catalog, err := application.CatalogFromYAML(data)
		if err != nil {
			logger.Error("failed to parse template seed catalog", "error", err, "path", cfg.TemplateSeedPath)
			os.Exit(1)
		}
		if err := messageService.SeedTemplates(ctx, catalog); err != nil {
			logger.Error("failed to seed templates", "error", err)
			os.Exit(1)
		}
	}

	go pruneSessions(ctx, authService, logger)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	memberHandler := httptransport.NewMemberHandler(memberService, logger)
	dutyHandler := httptransport.NewDutyHandler(dutyService, logger)
	messageHandler := httptransport.NewMessageHandler(messageService, logger)
	dashboardHandler := httptransport.NewDashboardHandler(logger)
	exportHandler := httptransport.NewExportHandler(dutyService, memberService, location, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      authHandler,
		Members:   memberHandler,
		Duties:    dutyHandler,
		Messages:  messageHandler,
		Dashboard: dashboardHandler,
		Export:    exportHandler,
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Path, "/sessions") && r.Method == http.MethodPost {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("roster API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server terminated unexpectedly", "error", err)
		os.Exit(1)
	}
}

func pruneSessions(ctx context.Context, authService *application.AuthService, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.PruneSessions(ctx); err != nil {
				logger.Error("failed to prune expired sessions", "error", err)
			}
		}
	}
}

func mapPersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrAlreadyExists):
		return application.ErrAlreadyExists
	default:
		return err
	}
}

// ----------------------- member repository adapter -----------------------

type memberRepositoryAdapter struct {
	repo *sqlite.MemberRepository
}

func newMemberRepositoryAdapter(repo *sqlite.MemberRepository) *memberRepositoryAdapter {
	return &memberRepositoryAdapter{repo: repo}
}

func (a *memberRepositoryAdapter) CreateMember(ctx context.Context, member application.Member, passwordHash string) (application.Member, error) {
	if err := a.repo.CreateMember(ctx, toPersistenceMember(member, passwordHash)); err != nil {
		return application.Member{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetMember(ctx, member.ID)
	if err != nil {
		return application.Member{}, mapPersistenceError(err)
	}
	return toApplicationMember(stored), nil
}

func (a *memberRepositoryAdapter) UpdateMember(ctx context.Context, member application.Member, passwordHash string) (application.Member, error) {
	if passwordHash == "" {
		current, err := a.repo.GetMember(ctx, member.ID)
		if err != nil {
			return application.Member{}, mapPersistenceError(err)
		}
		passwordHash = current.PasswordHash
	}
	if err := a.repo.UpdateMember(ctx, toPersistenceMember(member, passwordHash)); err != nil {
		return application.Member{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetMember(ctx, member.ID)
	if err != nil {
		return application.Member{}, mapPersistenceError(err)
	}
	return toApplicationMember(stored), nil
}

func (a *memberRepositoryAdapter) GetMember(ctx context.Context, id string) (application.Member, error) {
	stored, err := a.repo.GetMember(ctx, id)
	if err != nil {
		return application.Member{}, mapPersistenceError(err)
	}
	return toApplicationMember(stored), nil
}

func (a *memberRepositoryAdapter) GetMemberCredentialsByEmail(ctx context.Context, email string) (application.MemberCredentials, error) {
	stored, err := a.repo.GetMemberByEmail(ctx, email)
	if err != nil {
		return application.MemberCredentials{}, mapPersistenceError(err)
	}
	return application.MemberCredentials{
		Member:       toApplicationMember(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *memberRepositoryAdapter) DeleteMember(ctx context.Context, id string) error {
	return mapPersistenceError(a.repo.DeleteMember(ctx, id))
}

func (a *memberRepositoryAdapter) ListMembers(ctx context.Context) ([]application.Member, error) {
	models, err := a.repo.ListMembers(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	members := make([]application.Member, 0, len(models))
	for _, model := range models {
		members = append(members, toApplicationMember(model))
	}
	return members, nil
}

func toPersistenceMember(member application.Member, passwordHash string) persistence.Member {
	roleTags := make([]string, len(member.Roles))
	for i, role := range member.Roles {
		roleTags[i] = string(role)
	}
	return persistence.Member{
		ID:           member.ID,
		Email:        member.Email,
		FirstName:    member.FirstName,
		LastName:     member.LastName,
		Gender:       member.Gender,
		University:   member.University,
		Course:       member.Course,
		BirthDate:    member.BirthDate,
		PasswordHash: passwordHash,
		Roles:        roleTags,
		CreatedAt:    member.CreatedAt,
		UpdatedAt:    member.UpdatedAt,
	}
}

func toApplicationMember(model persistence.Member) application.Member {
	roles := make([]roster.Role, len(model.Roles))
	for i, tag := range model.Roles {
		roles[i] = roster.Role(tag)
	}
	return application.Member{
		ID:         model.ID,
		Email:      model.Email,
		FirstName:  model.FirstName,
		LastName:   model.LastName,
		Gender:     model.Gender,
		University: model.University,
		Course:     model.Course,
		BirthDate:  model.BirthDate,
		Roles:      roles,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// ------------------------ duty repository adapter -------------------------

type dutyRepositoryAdapter struct {
	repo *sqlite.DutyRepository
}

func newDutyRepositoryAdapter(repo *sqlite.DutyRepository) *dutyRepositoryAdapter {
	return &dutyRepositoryAdapter{repo: repo}
}

func (a *dutyRepositoryAdapter) CreateDuty(ctx context.Context, duty application.Duty) (application.Duty, error) {
	if err := a.repo.CreateDuty(ctx, toPersistenceDuty(duty)); err != nil {
		return application.Duty{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetDuty(ctx, duty.ID)
	if err != nil {
		return application.Duty{}, mapPersistenceError(err)
	}
	return toApplicationDuty(stored), nil
}

func (a *dutyRepositoryAdapter) UpdateDuty(ctx context.Context, duty application.Duty) (application.Duty, error) {
	if err := a.repo.UpdateDuty(ctx, toPersistenceDuty(duty)); err != nil {
		return application.Duty{}, mapPersistenceError(err)
	}
	stored, err := a.repo.GetDuty(ctx, duty.ID)
	if err != nil {
		return application.Duty{}, mapPersistenceError(err)
	}
	return toApplicationDuty(stored), nil
}

func (a *dutyRepositoryAdapter) GetDuty(ctx context.Context, id string) (application.Duty, error) {
	stored, err := a.repo.GetDuty(ctx, id)
	if err != nil {
		return application.Duty{}, mapPersistenceError(err)
	}
	return toApplicationDuty(stored), nil
}

func (a *dutyRepositoryAdapter) DeleteDuty(ctx context.Context, id string) error {
	return mapPersistenceError(a.repo.DeleteDuty(ctx, id))
}

func (a *dutyRepositoryAdapter) ListDuties(ctx context.Context, filter application.DutyListFilter) ([]application.Duty, error) {
	models, err := a.repo.ListDuties(ctx, persistence.DutyFilter{
		Category: string(filter.Category),
		From:     filter.From,
		To:       filter.To,
		MemberID: filter.MemberID,
	})
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	duties := make([]application.Duty, 0, len(models))
	for _, model := range models {
		duties = append(duties, toApplicationDuty(model))
	}
	return duties, nil
}

func toPersistenceDuty(duty application.Duty) persistence.Duty {
	var notes *string
	if duty.Notes != "" {
		value := duty.Notes
		notes = &value
	}
	return persistence.Duty{
		ID:        duty.ID,
		Category:  string(duty.Category),
		Date:      duty.Date,
		StartsAt:  duty.StartsAt,
		Notes:     notes,
		CreatorID: duty.CreatorID,
		Assignees: duty.Assignees,
		CreatedAt: duty.CreatedAt,
		UpdatedAt: duty.UpdatedAt,
	}
}

func toApplicationDuty(model persistence.Duty) application.Duty {
	duty := application.Duty{
		ID:        model.ID,
		Category:  roster.Category(model.Category),
		Date:      model.Date,
		StartsAt:  model.StartsAt,
		CreatorID: model.CreatorID,
		Assignees: model.Assignees,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.Notes != nil {
		duty.Notes = *model.Notes
	}
	return duty
}

// -------------------------- session store adapter -------------------------

type sessionStoreAdapter struct {
	repo *sqlite.SessionRepository
}

func newSessionStoreAdapter(repo *sqlite.SessionRepository) *sessionStoreAdapter {
	return &sessionStoreAdapter{repo: repo}
}

func (a *sessionStoreAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) GetSession(ctx context.Context, id string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) RevokeSession(ctx context.Context, id string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, id, revokedAt)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return mapPersistenceError(a.repo.DeleteExpiredSessions(ctx, reference))
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		MemberID:  session.MemberID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		MemberID:  model.MemberID,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: model.RevokedAt,
	}
}

// ------------------------- template store adapter -------------------------

type templateStoreAdapter struct {
	repo *sqlite.TemplateRepository
}

func newTemplateStoreAdapter(repo *sqlite.TemplateRepository) *templateStoreAdapter {
	return &templateStoreAdapter{repo: repo}
}

func (a *templateStoreAdapter) UpsertTemplate(ctx context.Context, template application.MessageTemplate) error {
	return mapPersistenceError(a.repo.UpsertTemplate(ctx, persistence.MessageTemplate{
		Name:      template.Name,
		Subject:   template.Subject,
		Body:      template.Body,
		CreatedAt: template.CreatedAt,
		UpdatedAt: template.UpdatedAt,
	}))
}

func (a *templateStoreAdapter) GetTemplate(ctx context.Context, name string) (application.MessageTemplate, error) {
	stored, err := a.repo.GetTemplate(ctx, name)
	if err != nil {
		return application.MessageTemplate{}, mapPersistenceError(err)
	}
	return toApplicationTemplate(stored), nil
}

func (a *templateStoreAdapter) ListTemplates(ctx context.Context) ([]application.MessageTemplate, error) {
	models, err := a.repo.ListTemplates(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	templates := make([]application.MessageTemplate, 0, len(models))
	for _, model := range models {
		templates = append(templates, toApplicationTemplate(model))
	}
	return templates, nil
}

func (a *templateStoreAdapter) DeleteTemplate(ctx context.Context, name string) error {
	return mapPersistenceError(a.repo.DeleteTemplate(ctx, name))
}

func toApplicationTemplate(model persistence.MessageTemplate) application.MessageTemplate {
	return application.MessageTemplate{
		Name:      model.Name,
		Subject:   model.Subject,
		Body:      model.Body,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
