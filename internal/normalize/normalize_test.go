package normalize

import (
	"testing"
	"time"

	"github.com/nathannewyen/contribfeed/internal/model"
)

func TestIdentityKeysAreDeterministic(t *testing.T) {
	// Normalizing the same raw item twice must yield the same id.
	if PullRequestID("golang/go", 123) != PullRequestID("golang/go", 123) {
		t.Error("pull request id is not deterministic")
	}
	if got, want := PullRequestID("golang/go", 123), "gh-golang/go-123"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := CommitID("nathannewyen/gitcraft", "abcdef1234567"), "commit-nathannewyen/gitcraft-abcdef1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := CommitID("o/r", "ab12"), "commit-o/r-ab12"; got != want {
		t.Errorf("short sha should pass through, got %q want %q", got, want)
	}
	if got, want := GerritChangeID("go", 456), "gerrit-go-456"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIdentityKeysDoNotCollideAcrossSources(t *testing.T) {
	ids := map[string]bool{}
	for _, id := range []string{
		PullRequestID("go", 1),
		CommitID("go", "0000001"),
		GerritChangeID("go", 1),
	} {
		if ids[id] {
			t.Errorf("id collision: %s", id)
		}
		ids[id] = true
	}
}

func TestGitHubStatusPrecedence(t *testing.T) {
	mergedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		mergedAt *time.Time
		state    string
		want     model.Status
	}{
		{"merged timestamp set", &mergedAt, "closed", model.StatusMerged},
		{"merged wins over open state", &mergedAt, "open", model.StatusMerged},
		{"closed without merge", nil, "closed", model.StatusClosed},
		{"open", nil, "open", model.StatusOpen},
		{"zero merge timestamp treated as unmerged", &time.Time{}, "closed", model.StatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GitHubStatus(tt.mergedAt, tt.state); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGitHubStatusExample(t *testing.T) {
	// Three raw PRs: merged, closed-unmerged, open.
	mergedAt := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	got := []model.Status{
		GitHubStatus(&mergedAt, "closed"),
		GitHubStatus(nil, "closed"),
		GitHubStatus(nil, "open"),
	}
	want := []model.Status{model.StatusMerged, model.StatusClosed, model.StatusOpen}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pr %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGerritStatus(t *testing.T) {
	tests := []struct {
		in   string
		want model.Status
	}{
		{"MERGED", model.StatusMerged},
		{"ABANDONED", model.StatusClosed},
		{"NEW", model.StatusOpen},
		{"", model.StatusOpen},
	}

	for _, tt := range tests {
		if got := GerritStatus(tt.in); got != tt.want {
			t.Errorf("GerritStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayGroup(t *testing.T) {
	g := Grouping{
		Repos: map[string]string{
			"facebook/react-native": "React Native",
			"kubernetes/kubernetes": "Kubernetes",
		},
		Orgs: map[string]string{
			"langchain-ai": "LangChain",
			"golang":       "Go",
		},
	}

	tests := []struct {
		name string
		repo string
		want string
	}{
		{"exact override", "facebook/react-native", "React Native"},
		{"org grouping", "langchain-ai/langchain", "LangChain"},
		{"org grouping second repo", "langchain-ai/langgraph", "LangChain"},
		{"exact override beats org", "kubernetes/kubernetes", "Kubernetes"},
		{"fallback to repo name", "stylelint/stylelint", "stylelint"},
		{"single segment passes through", "go", "go"},
		{"single segment org match", "golang", "Go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.DisplayGroup(tt.repo); got != tt.want {
				t.Errorf("DisplayGroup(%q) = %q, want %q", tt.repo, got, tt.want)
			}
		})
	}
}

func TestDisplayGroupIsFunctionOfRepo(t *testing.T) {
	// Two contributions with the same repo must land in the same group.
	g := Grouping{Orgs: map[string]string{"langchain-ai": "LangChain"}}
	a := g.DisplayGroup("langchain-ai/langchainjs")
	b := g.DisplayGroup("langchain-ai/langchainjs")
	if a != b {
		t.Errorf("grouping is not stable: %q vs %q", a, b)
	}
}

func TestLocalDateSameInstantSameDate(t *testing.T) {
	// Two items created in the same upstream instant normalize to the
	// same local calendar date regardless of the zone they arrived in.
	utc := time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC)
	shifted := utc.In(time.FixedZone("UTC+9", 9*3600))

	if LocalDate(utc) != LocalDate(shifted) {
		t.Errorf("same instant produced different dates: %q vs %q", LocalDate(utc), LocalDate(shifted))
	}
	if _, err := time.Parse(DateLayout, LocalDate(utc)); err != nil {
		t.Errorf("LocalDate output not in %s form: %v", DateLayout, err)
	}
}
