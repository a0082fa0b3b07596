package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-align/internal/ranking"
	"github.com/jonathan/cv-align/internal/types"
)

// fakeStorage is an in-memory Storage that records every status
// transition and node event so tests can assert on the audit trail.
type fakeStorage struct {
	mu sync.Mutex

	runs          map[uuid.UUID]*RunRecord
	statusHistory []Status
	artifacts     map[string]any
	events        []NodeEvent
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		runs:      make(map[uuid.UUID]*RunRecord),
		artifacts: make(map[string]any),
	}
}

func (s *fakeStorage) CreateRun(_ context.Context, runID uuid.UUID, email, docID string, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = &RunRecord{RunID: runID, Email: email, DocID: docID, Status: StatusPending, Payload: payload}
	s.statusHistory = append(s.statusHistory, StatusPending)
	return nil
}

func (s *fakeStorage) UpdateStatus(_ context.Context, runID uuid.UUID, status Status, payload map[string]any, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	record.Status = status
	record.Payload = payload
	record.LastError = lastError
	s.statusHistory = append(s.statusHistory, status)
	return nil
}

func (s *fakeStorage) GetLatest(_ context.Context, runID uuid.UUID) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.runs[runID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (s *fakeStorage) ClaimForResume(_ context.Context, runID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.runs[runID]
	if !ok || record.Status != StatusAwaitingApproval {
		return false, nil
	}
	record.Status = StatusRunning
	s.statusHistory = append(s.statusHistory, StatusRunning)
	return true, nil
}

func (s *fakeStorage) SetApprovalToken(_ context.Context, runID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	record.ApprovalToken = token
	return nil
}

func (s *fakeStorage) SaveArtifact(_ context.Context, _ uuid.UUID, artifactType string, content any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifactType] = content
	return nil
}

func (s *fakeStorage) GetArtifact(_ context.Context, _ uuid.UUID, artifactType string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.artifacts[artifactType]
	if !ok {
		return nil, nil
	}
	return json.Marshal(content)
}

func (s *fakeStorage) RecordNodeEvent(_ context.Context, event NodeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStorage) eventNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.events))
	for i, event := range s.events {
		names[i] = event.NodeName
	}
	return names
}

type fakeLLM struct {
	analyzeCalls    int
	scoreCalls      int
	planCalls       int
	synthesizeCalls int
	failSynthesize  bool
	failImprovement bool
}

func (l *fakeLLM) AnalyzeAlignment(_ context.Context, _, _ string) (*types.AlignmentAnalysis, error) {
	l.analyzeCalls++
	return &types.AlignmentAnalysis{
		CompanyName: []string{"Acme"},
		JobTitle:    []string{"Platform Engineer"},
		HardSkills:  []string{"Go", "Kubernetes", "PostgreSQL"},
	}, nil
}

func (l *fakeLLM) ScoreCV(_ context.Context, _, _ string, _ *types.AlignmentAnalysis) (*types.CVScore, error) {
	l.scoreCalls++
	return &types.CVScore{
		OverallScore:      55 + l.scoreCalls*10,
		HardSkillsScore:   60,
		SoftSkillsScore:   70,
		MissingHardSkills: []string{"Kubernetes", "Terraform"},
	}, nil
}

func (l *fakeLLM) ImprovementPlan(_ context.Context, _, _ string, _ *types.CVScore) (*types.ImprovementPlan, error) {
	l.planCalls++
	if l.failImprovement {
		return nil, errors.New("model overloaded")
	}
	return &types.ImprovementPlan{
		Reformulations: []types.Reformulation{
			{Original: "Worked on backend", Improved: "Built Go services handling 10k rps", Reason: "quantify impact"},
		},
	}, nil
}

func (l *fakeLLM) SynthesizeProjects(_ context.Context, _ []string, _ []types.TutorialCatalogEntry, _, _ string) ([]types.MvpProject, error) {
	l.synthesizeCalls++
	if l.failSynthesize {
		return nil, errors.New("model overloaded")
	}
	return []types.MvpProject{
		{TutorialTitle: "Deploy Go on Kubernetes", SkillsCombined: []string{"Kubernetes", "Terraform"}},
	}, nil
}

type fakeDocs struct {
	mu           sync.Mutex
	exportCalls  int
	prependCalls int
	prepended    []string
	text         string
}

func (d *fakeDocs) ExportText(_ context.Context, _ string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exportCalls++
	return d.text, nil
}

func (d *fakeDocs) PrependText(_ context.Context, _, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prependCalls++
	d.prepended = append(d.prepended, text)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []string
	subjects []string
	fail     bool
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, to)
	n.subjects = append(n.subjects, subject)
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) RenderApproval(data ApprovalEmailData) (string, error) {
	return "<html>" + data.ReviewURL + "</html>", nil
}

func (fakeRenderer) RenderCompletion(data CompletionEmailData) (string, error) {
	return fmt.Sprintf("<html>score %d</html>", data.OverallScore), nil
}

type fakeVideos struct {
	mu      sync.Mutex
	queries []string
	fail    map[string]bool
}

func (v *fakeVideos) Search(_ context.Context, query string, _ int64) ([]types.Video, error) {
	v.mu.Lock()
	v.queries = append(v.queries, query)
	v.mu.Unlock()
	if v.fail[query] {
		return nil, errors.New("quota exhausted")
	}
	return []types.Video{
		{
			VideoID:      "vid-" + query[:2],
			Title:        query,
			URL:          "https://youtube.com/watch?v=" + query[:2],
			ChannelTitle: "Tech With Tim",
			Duration:     "PT1H",
			ViewCount:    50000,
			LikeCount:    2000,
			PublishedAt:  "2026-01-01T00:00:00Z",
		},
	}, nil
}

type fakeFetcher struct {
	calls int
	text  string
}

func (f *fakeFetcher) FetchText(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.text == "" {
		return "", errors.New("fetch failed")
	}
	return f.text, nil
}

type fakeSigner struct{ calls int }

func (s *fakeSigner) Sign(runID uuid.UUID) (string, error) {
	s.calls++
	return "token-" + runID.String()[:8], nil
}

type testHarness struct {
	deps     *Deps
	storage  *fakeStorage
	llm      *fakeLLM
	docs     *fakeDocs
	notifier *fakeNotifier
	videos   *fakeVideos
	fetcher  *fakeFetcher
	signer   *fakeSigner
}

func newHarness() *testHarness {
	h := &testHarness{
		storage:  newFakeStorage(),
		llm:      &fakeLLM{},
		docs:     &fakeDocs{text: "Jonathan Doe\nBackend engineer with Go experience."},
		notifier: &fakeNotifier{},
		videos:   &fakeVideos{},
		fetcher:  &fakeFetcher{text: "We need a Platform Engineer with Kubernetes."},
		signer:   &fakeSigner{},
	}
	h.deps = &Deps{
		Storage:         h.storage,
		LLM:             h.llm,
		Docs:            h.docs,
		Notifier:        h.notifier,
		Renderer:        fakeRenderer{},
		Videos:          h.videos,
		Fetcher:         h.fetcher,
		Ranking:         ranking.NewService(nil),
		Signer:          h.signer,
		FrontendBaseURL: "http://localhost:8080",
	}
	return h
}

func kickoffRequest() KickoffRequest {
	return KickoffRequest{
		Email:          "candidate@example.com",
		DocID:          "doc-123",
		JobDescription: "We need a Platform Engineer who knows Kubernetes and Terraform.",
	}
}

func TestKickoff_SuspendsAtApprovalGate(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	runID, status, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingApproval, status)

	record, err := h.storage.GetLatest(context.Background(), runID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, StatusAwaitingApproval, record.Status)
	assert.NotEmpty(t, record.ApprovalToken)

	// Lifecycle so far: pending -> running -> awaiting_approval.
	assert.Equal(t, []Status{StatusPending, StatusRunning, StatusAwaitingApproval}, h.storage.statusHistory)

	// One approval email, carrying the review link.
	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "candidate@example.com", h.notifier.sent[0])
	assert.Contains(t, h.notifier.subjects[0], "Platform Engineer")

	// Nothing past the gate ran.
	assert.Equal(t, 0, h.docs.prependCalls)
	assert.Equal(t, 1, h.llm.scoreCalls)

	// Pre-gate artifacts are all persisted.
	for _, artifactType := range []string{ArtifactCVText, ArtifactJDText, ArtifactCVAnalysis, ArtifactCVScore, ArtifactCVImprovements, ArtifactProjectSuggestions} {
		assert.Contains(t, h.storage.artifacts, artifactType, "missing artifact %s", artifactType)
	}
	assert.NotContains(t, h.storage.artifacts, ArtifactFinalScore)
}

func TestResume_CompletesRun(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	runID, _, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.NoError(t, err)
	exportsBeforeResume := h.docs.exportCalls
	analyzesBeforeResume := h.llm.analyzeCalls

	status, err := runner.Resume(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)

	record, err := h.storage.GetLatest(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, record.Status)

	// Improvements were written into the document exactly once.
	require.Equal(t, 1, h.docs.prependCalls)
	assert.Contains(t, h.docs.prepended[0], "SUGGESTED IMPROVEMENTS")
	assert.Contains(t, h.docs.prepended[0], "Built Go services handling 10k rps")

	// Replay reused the persisted state: no second analysis, but the
	// edited document was re-exported for rescoring.
	assert.Equal(t, analyzesBeforeResume, h.llm.analyzeCalls)
	assert.Equal(t, exportsBeforeResume+1, h.docs.exportCalls)
	assert.Equal(t, 2, h.llm.scoreCalls)

	// Completion email followed the approval email.
	require.Len(t, h.notifier.sent, 2)
	assert.Contains(t, h.storage.artifacts, ArtifactFinalScore)
	assert.Contains(t, h.storage.artifacts, ArtifactAppliedImprovements)
}

func TestResume_ReplaySendsNoSecondApprovalEmail(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	runID, _, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.NoError(t, err)
	require.Equal(t, 1, h.signer.calls)

	_, err = runner.Resume(context.Background(), runID)
	require.NoError(t, err)

	// The approval node's replay guard fired: one token, one email.
	assert.Equal(t, 1, h.signer.calls)
	approvals := 0
	for _, subject := range h.notifier.subjects {
		if subject != "Your CV update is complete" {
			approvals++
		}
	}
	assert.Equal(t, 1, approvals)
}

func TestResume_NonAwaitingIsNoOp(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	runID, _, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.NoError(t, err)
	_, err = runner.Resume(context.Background(), runID)
	require.NoError(t, err)

	prependsAfterFirst := h.docs.prependCalls
	status, err := runner.Resume(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, prependsAfterFirst, h.docs.prependCalls)
}

func TestResume_ConcurrentApprovalsResumeOnce(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	runID, _, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.NoError(t, err)

	// Two approval clicks racing: both see awaiting_approval, but only
	// one may claim the run and apply the edits.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, resumeErr := runner.Resume(context.Background(), runID)
			assert.NoError(t, resumeErr)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.docs.prependCalls)
	require.Len(t, h.notifier.sent, 2)

	record, err := h.storage.GetLatest(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, record.Status)
}

func TestResume_UnknownRun(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	_, err := runner.Resume(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestResume_RoundTripsThroughPersistedPayload(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	runID, _, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.NoError(t, err)

	record, err := h.storage.GetLatest(context.Background(), runID)
	require.NoError(t, err)
	st, err := StateFromPayload(record.Payload)
	require.NoError(t, err)

	assert.Equal(t, runID, st.RunID)
	assert.True(t, st.AwaitingApproval)
	assert.NotEmpty(t, st.CVText)
	assert.NotEmpty(t, st.JDText)
	require.NotNil(t, st.Score)
	require.NotNil(t, st.Improvements)
	assert.NotEmpty(t, st.SkillQueries)
}

func TestPipeline_FailureMovesRunToFailed(t *testing.T) {
	h := newHarness()
	h.llm.failImprovement = true
	runner := NewRunner(h.deps)

	runID, status, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, NodeScoreCV, nodeErr.Node)

	record, getErr := h.storage.GetLatest(context.Background(), runID)
	require.NoError(t, getErr)
	assert.Equal(t, StatusFailed, record.Status)
	assert.Contains(t, record.LastError, "model overloaded")
}

func TestPipeline_TelemetryRecordsFailedAttempt(t *testing.T) {
	h := newHarness()
	h.llm.failImprovement = true
	runner := NewRunner(h.deps)

	_, _, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.Error(t, err)

	names := h.storage.eventNames()
	require.NotEmpty(t, names)
	assert.Equal(t, NodeScoreCV, names[len(names)-1])

	last := h.storage.events[len(h.storage.events)-1]
	assert.NotEmpty(t, last.Error)
	assert.NotNil(t, last.StateBefore)
	assert.Empty(t, last.StateAfter)
}

func TestPipeline_TelemetryCoversEveryNode(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	_, _, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.NoError(t, err)

	names := h.storage.eventNames()
	assert.Equal(t, []string{
		NodeIngest, NodeExportDoc, NodeMergeJD, NodeAnalyzeAlignment,
		NodeScoreCV, NodeBuildQueries, NodeFindTutorials, NodeMVPProjects,
		NodeCollect, NodeApprovalEmail, NodeWaitApproval,
	}, names)
}

func TestMergeJD_InlineTextWinsOverURL(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	req := kickoffRequest()
	req.JobDescriptionURL = "https://jobs.example.com/123"
	_, status, err := runner.Kickoff(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingApproval, status)
	assert.Equal(t, 0, h.fetcher.calls)
}

func TestMergeJD_FetchesURLWhenNoInlineText(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	req := kickoffRequest()
	req.JobDescription = ""
	req.JobDescriptionURL = "https://jobs.example.com/123"
	_, status, err := runner.Kickoff(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingApproval, status)
	assert.Equal(t, 1, h.fetcher.calls)
}

func TestMergeJD_NoSourceFailsRun(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	req := kickoffRequest()
	req.JobDescription = "   "
	_, status, err := runner.Kickoff(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, status)
	assert.ErrorIs(t, err, ErrNoJobDescription)
}

func TestFindTutorials_PreservesQueryOrder(t *testing.T) {
	h := newHarness()

	st := &State{
		RunID:  uuid.New(),
		Email:  "candidate@example.com",
		DocID:  "doc-123",
		JDText: "jd",
		CVText: "cv",
		SkillQueries: []types.SkillQuery{
			{Skill: "zz-last-alphabetically", Query: "zz tutorial"},
			{Skill: "aa-first-alphabetically", Query: "aa tutorial"},
			{Skill: "mm-middle", Query: "mm tutorial"},
		},
	}
	require.NoError(t, h.storage.CreateRun(context.Background(), st.RunID, st.Email, st.DocID, st.Snapshot()))

	node := &findTutorialsNode{deps: h.deps}
	decision, err := node.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, Continue, decision)

	require.Len(t, st.ProjectSuggestions, 3)
	assert.Equal(t, "zz-last-alphabetically", st.ProjectSuggestions[0].Skill)
	assert.Equal(t, "aa-first-alphabetically", st.ProjectSuggestions[1].Skill)
	assert.Equal(t, "mm-middle", st.ProjectSuggestions[2].Skill)
}

func TestFindTutorials_FailedSearchDegrades(t *testing.T) {
	h := newHarness()
	h.videos.fail = map[string]bool{"aa tutorial": true}

	st := &State{
		RunID: uuid.New(),
		SkillQueries: []types.SkillQuery{
			{Skill: "zz", Query: "zz tutorial"},
			{Skill: "aa", Query: "aa tutorial"},
		},
	}
	require.NoError(t, h.storage.CreateRun(context.Background(), st.RunID, "a@b.c", "doc", st.Snapshot()))

	node := &findTutorialsNode{deps: h.deps}
	_, err := node.Run(context.Background(), st)
	require.NoError(t, err)

	// The failed skill drops out; the surviving one keeps its place.
	require.Len(t, st.ProjectSuggestions, 1)
	assert.Equal(t, "zz", st.ProjectSuggestions[0].Skill)
}

func TestFindTutorials_NoVideoSearchConfigured(t *testing.T) {
	h := newHarness()
	h.deps.Videos = nil

	st := &State{
		RunID:        uuid.New(),
		SkillQueries: []types.SkillQuery{{Skill: "go", Query: "go tutorial"}},
	}

	node := &findTutorialsNode{deps: h.deps}
	decision, err := node.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, Continue, decision)
	assert.NotNil(t, st.ProjectSuggestions)
	assert.Empty(t, st.ProjectSuggestions)
}

func TestMVPProjects_SynthesisFailureDegrades(t *testing.T) {
	h := newHarness()
	h.llm.failSynthesize = true
	runner := NewRunner(h.deps)

	runID, status, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingApproval, status)

	record, err := h.storage.GetLatest(context.Background(), runID)
	require.NoError(t, err)
	st, err := StateFromPayload(record.Payload)
	require.NoError(t, err)
	assert.Empty(t, st.MVPProjects)
	assert.NotContains(t, h.storage.artifacts, ArtifactMVPProjects)
}

func TestBuildQueries_FallsBackToGenericQuery(t *testing.T) {
	st := &State{RunID: uuid.New()}

	node := &buildQueriesNode{deps: &Deps{}}
	_, err := node.Run(context.Background(), st)
	require.NoError(t, err)

	require.Len(t, st.SkillQueries, 1)
	assert.Equal(t, "general", st.SkillQueries[0].Skill)
}

func TestBuildQueries_DedupesAndCapsMissingSkills(t *testing.T) {
	st := &State{
		RunID: uuid.New(),
		Score: &types.CVScore{
			MissingHardSkills: []string{
				"Go", "Go", "Rust", "Rust", "Kubernetes", "Terraform",
				"Kafka", "Redis", "Postgres", "GraphQL", "Elixir", "Scala",
			},
		},
		Alignment: &types.AlignmentAnalysis{JobTitle: []string{"Backend Engineer"}},
	}

	node := &buildQueriesNode{deps: &Deps{}}
	_, err := node.Run(context.Background(), st)
	require.NoError(t, err)

	require.Len(t, st.SkillQueries, maxMissingSkills)
	assert.Equal(t, "Go", st.SkillQueries[0].Skill)
	assert.Equal(t, "Go tutorial project for Backend Engineer", st.SkillQueries[0].Query)
	assert.Equal(t, "Rust", st.SkillQueries[1].Skill)
}

func TestWaitApproval_Decision(t *testing.T) {
	node := &waitApprovalNode{}

	decision, err := node.Run(context.Background(), &State{})
	require.NoError(t, err)
	assert.Equal(t, Suspend, decision)

	decision, err = node.Run(context.Background(), &State{ApprovalGranted: true})
	require.NoError(t, err)
	assert.Equal(t, Continue, decision)
}

func TestApplyEdits_EmptyPlanSkipsDocumentWrite(t *testing.T) {
	h := newHarness()

	st := &State{
		RunID:        uuid.New(),
		DocID:        "doc-123",
		Improvements: &types.ImprovementPlan{},
	}
	node := &applyEditsNode{deps: h.deps}
	_, err := node.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 0, h.docs.prependCalls)
}

func TestRecalcScore_CompletionEmailFailureIsNotFatal(t *testing.T) {
	h := newHarness()
	runner := NewRunner(h.deps)

	runID, _, err := runner.Kickoff(context.Background(), kickoffRequest())
	require.NoError(t, err)

	h.notifier.fail = true
	status, err := runner.Resume(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
}

func TestStateSnapshot_RoundTrip(t *testing.T) {
	st := &State{
		RunID:          uuid.New(),
		Email:          "candidate@example.com",
		DocID:          "doc-123",
		JobDescription: "jd text",
		Score:          &types.CVScore{OverallScore: 72},
		ChannelBoosts:  map[string]float64{"tech with tim": 1.2},
	}

	restored, err := StateFromPayload(st.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, st.RunID, restored.RunID)
	assert.Equal(t, st.Email, restored.Email)
	require.NotNil(t, restored.Score)
	assert.Equal(t, 72, restored.Score.OverallScore)
	assert.Equal(t, 1.2, restored.ChannelBoosts["tech with tim"])
}

func TestGraph_NodeNamesInOrder(t *testing.T) {
	h := newHarness()
	graph := NewGraph(h.deps)

	assert.Equal(t, []string{
		NodeIngest, NodeExportDoc, NodeMergeJD, NodeAnalyzeAlignment,
		NodeScoreCV, NodeBuildQueries, NodeFindTutorials, NodeMVPProjects,
		NodeCollect, NodeApprovalEmail, NodeWaitApproval, NodeApplyEdits,
		NodeRecalcScore,
	}, graph.NodeNames())
}
