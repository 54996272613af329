package service

import (
	"context"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/logger"
	"github.com/snuggli/internal/metrics"
)

// WorkflowState 是一次推荐流程所处的阶段。
type WorkflowState string

const (
	StateNoData     WorkflowState = "no_data"
	StateReady      WorkflowState = "ready"
	StateGenerating WorkflowState = "generating"
	StateDisplayed  WorkflowState = "displayed"
)

const (
	NoticeWarning = "warning"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

const (
	msgProfileNotFound  = "Unable to fetch user data. Please try again later."
	msgProfileAmbiguous = "Multiple users found for this account. Please contact support."
	msgProfileFailed    = "Unable to load your profile right now. Please try again later."
	msgNoMoods          = "No recent mood data available. Please log your moods to get personalized recommendations."
	msgMoodsFailed      = "Unable to load your mood history right now. Please try again later."
	msgGenerateFailed   = "Unable to generate recommendations right now. Please try again later."
	msgNoActivities     = "You haven't added any activities yet. Try adding some from the recommendations above!"
	msgActivitiesFailed = "Unable to load your activities right now. Please try again later."
)

// ProfileLookup 解析唯一的用户资料。
type ProfileLookup interface {
	LookupProfile(ctx context.Context, userID string) (db.User, error)
}

// Notice 是展示给用户的提示信息。
type Notice struct {
	Level   string      `json:"level"`
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// RecommendationView 是推荐页面需要的全部数据。
// 推荐文本只用于展示，不会自动写入活动台账。
type RecommendationView struct {
	State              WorkflowState `json:"state"`
	SubjectID          string        `json:"subject_id"`
	Recommendation     string        `json:"recommendation,omitempty"`
	RecommendationHTML string        `json:"recommendation_html,omitempty"`
	Notice             *Notice       `json:"notice,omitempty"`
	Activities         []db.Activity `json:"activities"`
	ActivitiesNotice   *Notice       `json:"activities_notice,omitempty"`

	// Trail 依次记录经过的状态。
	Trail []WorkflowState `json:"trail"`
}

func (v *RecommendationView) enter(state WorkflowState) {
	v.State = state
	v.Trail = append(v.Trail, state)
}

// RecommendationWorkflow 依次读取资料、心情与专业建议，再调用生成器并附上活动台账。
// 所有读取按顺序执行，失败在本层转为提示信息，不向上抛出。
type RecommendationWorkflow struct {
	profiles   ProfileLookup
	moods      MoodReader
	inputs     ProfessionalInputReader
	activities ActivityLister
	generator  RecommendationGenerator
	metrics    *metrics.GenerationMetrics
	log        *logger.Logger
}

// NewRecommendationWorkflow 构造 RecommendationWorkflow。
func NewRecommendationWorkflow(
	profiles ProfileLookup,
	moods MoodReader,
	inputs ProfessionalInputReader,
	activities ActivityLister,
	generator RecommendationGenerator,
	m *metrics.GenerationMetrics,
	log *logger.Logger,
) *RecommendationWorkflow {
	return &RecommendationWorkflow{
		profiles:   profiles,
		moods:      moods,
		inputs:     inputs,
		activities: activities,
		generator:  generator,
		metrics:    m,
		log:        log,
	}
}

// Run 为 subjectID 执行一次推荐流程；subjectID 为空时使用会话用户本人。
func (w *RecommendationWorkflow) Run(ctx context.Context, sess Session, subjectID string) RecommendationView {
	if subjectID == "" {
		subjectID = sess.UserID
	}
	view := RecommendationView{SubjectID: subjectID, Activities: []db.Activity{}}
	view.enter(StateNoData)
	ctx = w.log.WithFields(ctx, map[string]any{"user_id": sess.UserID, "subject_id": subjectID})

	if err := sess.Authorize(subjectID); err != nil {
		view.Notice = &Notice{Level: NoticeError, Code: apperr.CodeOf(err), Message: apperr.As(err).Message()}
		return view
	}

	w.generate(ctx, subjectID, &view)
	// 前置条件未满足时流程停在 NoData，不展示活动台账。
	if view.State != StateNoData {
		w.attachActivities(ctx, subjectID, &view)
	}
	return view
}

func (w *RecommendationWorkflow) generate(ctx context.Context, subjectID string, view *RecommendationView) {
	profile, err := w.profiles.LookupProfile(ctx, subjectID)
	if err != nil {
		w.halt(ctx, view, profileNotice(err), err)
		return
	}

	moods, err := w.moods.Recent(ctx, subjectID)
	if err != nil {
		w.halt(ctx, view, &Notice{Level: NoticeError, Code: apperr.CodePersistence, Message: msgMoodsFailed}, err)
		return
	}
	if len(moods) == 0 {
		w.halt(ctx, view, &Notice{Level: NoticeWarning, Code: apperr.CodeEmptyPrecondition, Message: msgNoMoods}, nil)
		return
	}

	professional, err := w.inputs.Latest(ctx, subjectID)
	if err != nil {
		w.log.Warn(ctx, "professional input unavailable, using fallback: "+err.Error())
		professional = NoProfessionalInput
	}
	view.enter(StateReady)

	view.enter(StateGenerating)
	text, err := w.generator.Generate(ctx, RecommendationInput{
		Profile:           profile,
		RecentMoods:       moods,
		ProfessionalInput: professional,
	})
	if err != nil {
		view.enter(StateReady)
		view.Notice = &Notice{Level: NoticeError, Code: apperr.CodeServiceUnavailable, Message: msgGenerateFailed}
		w.metrics.IncHalt(string(apperr.CodeServiceUnavailable))
		w.log.Error(ctx, "recommendation generation failed", err)
		return
	}

	view.enter(StateDisplayed)
	view.Recommendation = text
	rendered, err := RenderRecommendationHTML(text)
	if err != nil {
		w.log.Warn(ctx, "render recommendation failed: "+err.Error())
		return
	}
	view.RecommendationHTML = rendered
}

func (w *RecommendationWorkflow) halt(ctx context.Context, view *RecommendationView, notice *Notice, err error) {
	view.Notice = notice
	w.metrics.IncHalt(string(notice.Code))
	if err != nil {
		w.log.Error(ctx, "recommendation workflow halted", err)
		return
	}
	w.log.Info(ctx, "recommendation workflow halted: "+string(notice.Code))
}

func (w *RecommendationWorkflow) attachActivities(ctx context.Context, subjectID string, view *RecommendationView) {
	activities, err := w.activities.List(ctx, subjectID)
	if err != nil {
		view.ActivitiesNotice = &Notice{Level: NoticeError, Code: apperr.CodeOf(err), Message: msgActivitiesFailed}
		w.log.Error(ctx, "load activity ledger failed", err)
		return
	}
	view.Activities = activities
	if len(activities) == 0 {
		view.ActivitiesNotice = &Notice{Level: NoticeInfo, Code: apperr.CodeEmptyPrecondition, Message: msgNoActivities}
	}
}

func profileNotice(err error) *Notice {
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound:
		return &Notice{Level: NoticeWarning, Code: apperr.CodeNotFound, Message: msgProfileNotFound}
	case apperr.CodeAmbiguous:
		return &Notice{Level: NoticeWarning, Code: apperr.CodeAmbiguous, Message: msgProfileAmbiguous}
	default:
		return &Notice{Level: NoticeError, Code: apperr.CodePersistence, Message: msgProfileFailed}
	}
}
