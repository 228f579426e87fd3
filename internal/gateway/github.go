// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// ErrNoMetricsFile is returned when a repository has no metrics file at
// the configured path. Callers treat it as "skip this repository".
var ErrNoMetricsFile = errors.New("metrics file not found")

// MergedPR holds the raw size data of one merged pull request, as
// reported by the GitHub API.
type MergedPR struct {
	Number       int
	Author       string
	MergedAt     time.Time
	Additions    int
	Deletions    int
	ChangedFiles int
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// FetchMetricsFile downloads the per-repository metrics file and
	// returns its raw line-delimited content.
	FetchMetricsFile(ctx context.Context, repo string) ([]byte, error)
	// ListMergedPRs lists pull requests merged in repo since the given
	// time (all of them when since is zero).
	ListMergedPRs(ctx context.Context, repo string, since time.Time) ([]MergedPR, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	metricsPath   string
	logger        *log.Logger
}

// mergedPRQuery fetches merged PRs with their size counters via search,
// which allows a single query string to carry the date filter.
type mergedPRQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename    string `graphql:"__typename"`
				PullRequest struct {
					Number int
					Author struct {
						Login string
					}
					MergedAt     githubv4.DateTime
					Additions    int
					Deletions    int
					ChangedFiles int
				} `graphql:"... on PullRequest"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 100, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token, metricsPath string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		metricsPath:   metricsPath,
		logger:        logger,
	}, nil
}

// FetchMetricsFile downloads the metrics file through the contents API.
// go-github decodes the base64 payload for us.
func (g *GitHubGateway) FetchMetricsFile(ctx context.Context, repo string) ([]byte, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	g.logger.Printf("Fetching %s from %s...", g.metricsPath, repo)

	fileContent, _, resp, err := g.restClient.Repositories.GetContents(ctx, owner, name, g.metricsPath, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w in %s", ErrNoMetricsFile, repo)
		}
		return nil, fmt.Errorf("failed to fetch contents of %s from %s: %w", g.metricsPath, repo, err)
	}
	if fileContent == nil {
		return nil, fmt.Errorf("%s in %s is a directory, not a file", g.metricsPath, repo)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode contents of %s from %s: %w", g.metricsPath, repo, err)
	}
	return []byte(content), nil
}

// ListMergedPRs pages through merged pull requests of a repository.
func (g *GitHubGateway) ListMergedPRs(ctx context.Context, repo string, since time.Time) ([]MergedPR, error) {
	if _, _, err := splitRepo(repo); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("repo:%s is:pr is:merged", repo)
	if !since.IsZero() {
		query += fmt.Sprintf(" merged:>=%s", since.Format("2006-01-02"))
	}
	g.logger.Printf("Listing merged PRs with query: %s", query)

	variables := map[string]interface{}{
		"query":  githubv4.String(query),
		"cursor": (*githubv4.String)(nil),
	}

	var prs []MergedPR
	for {
		var q mergedPRQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for merged PRs: %w", err)
		}
		for _, edge := range q.Search.Edges {
			if edge.Node.Typename != "PullRequest" {
				continue
			}
			prNode := edge.Node.PullRequest
			prs = append(prs, MergedPR{
				Number:       prNode.Number,
				Author:       prNode.Author.Login,
				MergedAt:     prNode.MergedAt.Time,
				Additions:    prNode.Additions,
				Deletions:    prNode.Deletions,
				ChangedFiles: prNode.ChangedFiles,
			})
		}
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of merged pull requests...")
	}
	g.logger.Printf("Found %d merged PRs in %s", len(prs), repo)
	return prs, nil
}

func splitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected org/name", repo)
	}
	return owner, name, nil
}
