package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-align/internal/ranking"
	"github.com/jonathan/cv-align/internal/types"
)

// Artifact types persisted by pipeline nodes.
const (
	ArtifactCVText              = "cv_text"
	ArtifactJDText              = "jd_text"
	ArtifactCVAnalysis          = "cv_analysis"
	ArtifactCVScore             = "cv_score"
	ArtifactCVImprovements      = "cv_improvements"
	ArtifactProjectSuggestions  = "project_suggestions"
	ArtifactVideoRankings       = "video_rankings"
	ArtifactMVPProjects         = "mvp_projects"
	ArtifactAppliedImprovements = "applied_improvements"
	ArtifactFinalScore          = "final_score"
)

// RunRecord is the latest persisted view of a run.
type RunRecord struct {
	RunID         uuid.UUID
	Email         string
	DocID         string
	Status        Status
	Payload       map[string]any
	ApprovalToken string
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NodeEvent is one append-only telemetry record per node invocation
// attempt, including failed ones.
type NodeEvent struct {
	RunID       uuid.UUID
	NodeName    string
	StartedAt   time.Time
	CompletedAt time.Time
	StateBefore map[string]any
	StateAfter  map[string]any
	Error       string
}

// Storage is the persistence contract consumed by the pipeline. A nil
// record (with nil error) from GetLatest means the run does not exist.
type Storage interface {
	CreateRun(ctx context.Context, runID uuid.UUID, email, docID string, payload map[string]any) error
	UpdateStatus(ctx context.Context, runID uuid.UUID, status Status, payload map[string]any, lastError string) error
	GetLatest(ctx context.Context, runID uuid.UUID) (*RunRecord, error)
	// ClaimForResume atomically moves the run from awaiting_approval to
	// running, returning false when another caller already claimed it.
	ClaimForResume(ctx context.Context, runID uuid.UUID) (bool, error)
	SetApprovalToken(ctx context.Context, runID uuid.UUID, token string) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, artifactType string, content any) error
	GetArtifact(ctx context.Context, runID uuid.UUID, artifactType string) ([]byte, error)
	RecordNodeEvent(ctx context.Context, event NodeEvent) error
}

// LLM is the language-model contract. Implementations validate the
// structured output and handle their own transient-error retries.
type LLM interface {
	AnalyzeAlignment(ctx context.Context, cvText, jdText string) (*types.AlignmentAnalysis, error)
	ScoreCV(ctx context.Context, cvText, jdText string, analysis *types.AlignmentAnalysis) (*types.CVScore, error)
	ImprovementPlan(ctx context.Context, cvText, jdText string, score *types.CVScore) (*types.ImprovementPlan, error)
	SynthesizeProjects(ctx context.Context, missingSkills []string, catalog []types.TutorialCatalogEntry, cvText, jdText string) ([]types.MvpProject, error)
}

// DocumentStore exports and edits the candidate's CV document.
type DocumentStore interface {
	// ExportText returns the document as plain text; oversized
	// documents are rejected by the implementation.
	ExportText(ctx context.Context, docID string) (string, error)
	PrependText(ctx context.Context, docID, text string) error
}

// Notifier delivers HTML email. Provider fallback (primary transport to
// secondary) is internal to the implementation.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ApprovalEmailData feeds the approval-request email template.
type ApprovalEmailData struct {
	RunID              string
	ReviewURL          string
	DocURL             string
	UserEmail          string
	CompanyName        string
	JobTitle           string
	Score              *types.CVScore
	Analysis           *types.AlignmentAnalysis
	Improvements       *types.ImprovementPlan
	ProjectSuggestions []types.ProjectSuggestion
	MVPProjects        []types.MvpProject
}

// CompletionEmailData feeds the post-approval completion email template.
type CompletionEmailData struct {
	RunID        string
	DocURL       string
	OverallScore int
}

// EmailRenderer renders the notification bodies. Implemented by the
// mailer's embedded templates.
type EmailRenderer interface {
	RenderApproval(data ApprovalEmailData) (string, error)
	RenderCompletion(data CompletionEmailData) (string, error)
}

// VideoSearch finds tutorial candidates. Implementations are
// quota-aware and fail closed when the budget is exhausted.
type VideoSearch interface {
	Search(ctx context.Context, query string, maxResults int64) ([]types.Video, error)
}

// JobFetcher resolves a job-description URL to plain text.
type JobFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// ApprovalSigner mints the opaque signed token embedded in review links.
// Validation happens at the HTTP boundary before Resume is invoked.
type ApprovalSigner interface {
	Sign(runID uuid.UUID) (string, error)
}

// Deps bundles the collaborators injected into the pipeline nodes.
// Videos may be nil, in which case the tutorial branch degrades to
// empty suggestions instead of failing the run.
type Deps struct {
	Storage  Storage
	LLM      LLM
	Docs     DocumentStore
	Notifier Notifier
	Renderer EmailRenderer
	Videos   VideoSearch
	Fetcher  JobFetcher
	Ranking  *ranking.Service
	Signer   ApprovalSigner

	// FrontendBaseURL is the public base used to build review links.
	FrontendBaseURL string
}
