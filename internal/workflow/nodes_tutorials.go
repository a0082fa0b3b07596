package workflow

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-align/internal/types"
)

const (
	searchResultsPerSkill = 8
	tutorialsPerSkill     = 3
	maxMissingSkills      = 8
	maxFallbackSkills     = 5
	maxConcurrentSearches = 4
	maxCatalogPerSkill    = 3
)

// buildQueriesNode turns missing hard skills into tutorial search
// queries. Falls back to the top extracted hard skills, then to a
// single generic query, so the branch always has something to do.
type buildQueriesNode struct {
	deps *Deps
}

func (n *buildQueriesNode) Name() string { return NodeBuildQueries }

func (n *buildQueriesNode) Run(ctx context.Context, st *State) (Decision, error) {
	if len(st.SkillQueries) > 0 {
		log.Printf("run %s: skipping query building; already prepared", st.RunID)
		return Continue, nil
	}

	missing := missingSkills(st)
	jobTitle := ""
	if st.Alignment != nil {
		jobTitle = st.Alignment.FirstJobTitle()
	}
	if jobTitle == "" {
		jobTitle = "the role"
	}

	queries := make([]types.SkillQuery, 0, len(missing))
	for _, skill := range missing {
		queries = append(queries, types.SkillQuery{
			Skill: skill,
			Query: fmt.Sprintf("%s tutorial project for %s", skill, jobTitle),
		})
	}
	if len(queries) == 0 {
		queries = []types.SkillQuery{
			{Skill: "general", Query: "software engineering portfolio tutorial"},
		}
	}
	st.SkillQueries = queries
	log.Printf("run %s: prepared %d skill queries", st.RunID, len(queries))
	return Continue, nil
}

// missingSkills returns the deduplicated missing hard skills, falling
// back to the first extracted hard skills when the score found none.
func missingSkills(st *State) []string {
	var missing []string
	if st.Score != nil {
		missing = dedupe(st.Score.MissingHardSkills)
	}
	if len(missing) == 0 && st.Alignment != nil {
		skills := st.Alignment.HardSkills
		if len(skills) > maxFallbackSkills {
			skills = skills[:maxFallbackSkills]
		}
		missing = dedupe(skills)
	}
	if len(missing) > maxMissingSkills {
		missing = missing[:maxMissingSkills]
	}
	return missing
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// skillTutorials is the per-skill result assembled by the search branch.
type skillTutorials struct {
	suggestion types.ProjectSuggestion
	rankings   map[string]any
}

// findTutorialsNode searches, ranks, and packages tutorial candidates
// for every skill query. Skills are processed concurrently but the
// output order follows the query order, not completion order. The whole
// branch is optional: without a search collaborator, or when a search
// fails, it degrades to empty suggestions rather than failing the run.
type findTutorialsNode struct {
	deps *Deps
}

func (n *findTutorialsNode) Name() string { return NodeFindTutorials }

func (n *findTutorialsNode) Run(ctx context.Context, st *State) (Decision, error) {
	if len(st.ProjectSuggestions) > 0 {
		log.Printf("run %s: skipping tutorial search; suggestions already present", st.RunID)
		return Continue, nil
	}
	if n.deps.Videos == nil {
		log.Printf("run %s: skipping tutorial search; no video search configured", st.RunID)
		st.ProjectSuggestions = []types.ProjectSuggestion{}
		return Continue, nil
	}

	results := make([]*skillTutorials, len(st.SkillQueries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSearches)
	for i, query := range st.SkillQueries {
		g.Go(func() error {
			result, err := n.searchSkill(gctx, st, query)
			if err != nil {
				// Tutorials are optional to the final artifact; a
				// failed search degrades to no suggestions for the
				// skill instead of failing the run.
				log.Printf("run %s: tutorial search for %q failed: %v", st.RunID, query.Skill, err)
				return nil
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Continue, err
	}

	suggestions := make([]types.ProjectSuggestion, 0, len(results))
	rankedPayload := make([]map[string]any, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		suggestions = append(suggestions, result.suggestion)
		if result.rankings != nil {
			rankedPayload = append(rankedPayload, result.rankings)
		}
	}
	st.ProjectSuggestions = suggestions

	if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactProjectSuggestions, suggestions); err != nil {
		return Continue, fmt.Errorf("failed to persist project suggestions: %w", err)
	}
	if len(rankedPayload) > 0 {
		if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactVideoRankings, rankedPayload); err != nil {
			return Continue, fmt.Errorf("failed to persist video rankings: %w", err)
		}
	}
	return Continue, nil
}

func (n *findTutorialsNode) searchSkill(ctx context.Context, st *State, query types.SkillQuery) (*skillTutorials, error) {
	log.Printf("run %s: searching videos for skill %q", st.RunID, query.Skill)
	videos, err := n.deps.Videos.Search(ctx, query.Query, searchResultsPerSkill)
	if err != nil {
		return nil, err
	}
	ranked := n.deps.Ranking.Rank(videos, tutorialsPerSkill, query.Skill, st.ChannelBoosts)

	tutorials := make([]types.TutorialSuggestion, 0, len(ranked))
	rows := make([]map[string]any, 0, len(ranked))
	for i, candidate := range ranked {
		video := candidate.Video
		tip := personalizationTip(query.Skill, video)
		tutorials = append(tutorials, types.TutorialSuggestion{
			TutorialTitle:      video.Title,
			TutorialURL:        video.URL,
			PersonalizationTip: tip,
		})
		rows = append(rows, map[string]any{
			"rank":               i + 1,
			"score":              candidate.Score,
			"videoId":            video.VideoID,
			"title":              video.Title,
			"url":                video.URL,
			"channelTitle":       video.ChannelTitle,
			"duration":           video.Duration,
			"viewCount":          video.ViewCount,
			"likeCount":          video.LikeCount,
			"commentCount":       video.CommentCount,
			"publishedAt":        video.PublishedAt,
			"personalizationTip": tip,
		})
	}
	log.Printf("run %s: found %d tutorials for %q", st.RunID, len(tutorials), query.Skill)

	result := &skillTutorials{
		suggestion: types.ProjectSuggestion{Skill: query.Skill, Projects: tutorials},
	}
	if len(rows) > 0 {
		result.rankings = map[string]any{"skill": query.Skill, "videos": rows}
	}
	return result, nil
}

func personalizationTip(skill string, video types.Video) string {
	return fmt.Sprintf(
		"Build a highlight around %s referencing %s; cite metrics from the tutorial to prove hands-on experience.",
		skill, video.ChannelTitle,
	)
}

// mvpProjectsNode asks the LLM to combine several missing skills into
// buildable portfolio projects grounded in the found tutorials. The
// output is optional: synthesis failures degrade to an empty list.
type mvpProjectsNode struct {
	deps *Deps
}

func (n *mvpProjectsNode) Name() string { return NodeMVPProjects }

func (n *mvpProjectsNode) Run(ctx context.Context, st *State) (Decision, error) {
	if len(st.MVPProjects) > 0 {
		log.Printf("run %s: MVP projects already generated", st.RunID)
		return Continue, nil
	}

	missing := missingSkills(st)
	catalog := tutorialCatalog(st.ProjectSuggestions)
	if len(missing) == 0 || len(catalog) == 0 {
		log.Printf("run %s: skipping MVP generation; insufficient data", st.RunID)
		st.MVPProjects = []types.MvpProject{}
		return Continue, nil
	}

	log.Printf("run %s: generating MVP projects", st.RunID)
	projects, err := n.deps.LLM.SynthesizeProjects(ctx, missing, catalog, st.CVText, st.JDText)
	if err != nil {
		log.Printf("run %s: failed to generate MVP projects: %v", st.RunID, err)
		st.MVPProjects = []types.MvpProject{}
		return Continue, nil
	}
	st.MVPProjects = projects
	if len(projects) > 0 {
		if err := n.deps.Storage.SaveArtifact(ctx, st.RunID, ArtifactMVPProjects, projects); err != nil {
			return Continue, fmt.Errorf("failed to persist MVP projects: %w", err)
		}
	}
	return Continue, nil
}

func tutorialCatalog(suggestions []types.ProjectSuggestion) []types.TutorialCatalogEntry {
	var catalog []types.TutorialCatalogEntry
	for _, suggestion := range suggestions {
		projects := suggestion.Projects
		if len(projects) > maxCatalogPerSkill {
			projects = projects[:maxCatalogPerSkill]
		}
		for _, project := range projects {
			catalog = append(catalog, types.TutorialCatalogEntry{
				Skill:              suggestion.Skill,
				TutorialTitle:      project.TutorialTitle,
				TutorialURL:        project.TutorialURL,
				PersonalizationTip: project.PersonalizationTip,
			})
		}
	}
	return catalog
}

// collectNode is the fan-in barrier before notification; it only
// guarantees the suggestion slice is materialized.
type collectNode struct {
	deps *Deps
}

func (n *collectNode) Name() string { return NodeCollect }

func (n *collectNode) Run(_ context.Context, st *State) (Decision, error) {
	if st.ProjectSuggestions == nil {
		st.ProjectSuggestions = []types.ProjectSuggestion{}
	}
	log.Printf("run %s: collect barrier reached (%d suggestions)", st.RunID, len(st.ProjectSuggestions))
	return Continue, nil
}
