package gitmetrics

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"
)

// GraphQLEndpoint is the hosting service's GraphQL API root.
const GraphQLEndpoint = "https://api.github.com/graphql"

// GraphQLClient is the subset of the graphql client used here, an interface
// so tests can swap in a mock.
type GraphQLClient interface {
	Run(ctx context.Context, req *graphql.Request, resp interface{}) error
}

type repoSummaryResponse struct {
	Repository struct {
		Name             string `json:"name"`
		Description      string `json:"description"`
		StargazerCount   int    `json:"stargazerCount"`
		ForkCount        int    `json:"forkCount"`
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
		PrimaryLanguage struct {
			Name string `json:"name"`
		} `json:"primaryLanguage"`
	} `json:"repository"`
}

// FetchRepoSummary retrieves repository metadata over GraphQL. A repository
// without a primary language is reported as "Mixed".
func FetchRepoSummary(ctx context.Context, client GraphQLClient, loc RepoLocator, token string) (RepoSummary, error) {
	req := graphql.NewRequest(`
	query ($owner: String!, $name: String!) {
	  repository(owner: $owner, name: $name) {
	    name
	    description
	    stargazerCount
	    forkCount
	    defaultBranchRef {
	      name
	    }
	    primaryLanguage {
	      name
	    }
	  }
	}`)

	req.Var("owner", loc.Owner)
	req.Var("name", loc.Repo)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var resp repoSummaryResponse
	if err := client.Run(ctx, req, &resp); err != nil {
		return RepoSummary{}, fmt.Errorf("failed to fetch repository summary: %w", err)
	}

	language := resp.Repository.PrimaryLanguage.Name
	if language == "" {
		language = "Mixed"
	}

	return RepoSummary{
		Name:          resp.Repository.Name,
		Description:   resp.Repository.Description,
		Stars:         resp.Repository.StargazerCount,
		Forks:         resp.Repository.ForkCount,
		DefaultBranch: resp.Repository.DefaultBranchRef.Name,
		Language:      language,
	}, nil
}
