package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `proofescrow is a registry of proof-gated escrow projects.

A project holds a funding goal, a 32-byte proof commitment, a deadline and a balance. It starts
in "funding" and moves to "completed" exactly once, when the configured oracle submits a proof equal
to the commitment. Completion releases the whole balance to the creator, whether or not the goal
was reached.

Typical flow:
1) register_project (ids are assigned 0, 1, 2, ...).
2) deposit as donors.
3) An admin calls set_oracle once.
4) The oracle calls verify_and_release with the proof.

Errors come back as tool errors with text "CODE: message". Codes: InvalidGoal, InvalidDeadline,
NotFound, NotConfigured, AlreadyCompleted, HashMismatch, Unauthorized, InvalidAmount,
BalanceOverflow, InvalidInput.

Docs:
- escrow://docs/lifecycle
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "escrow://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Project lifecycle",
		Description: "States, checks and error order of every registry operation.",
		Content: `# Project lifecycle

## States

- ` + "`funding`" + `: accepts deposits and proofs.
- ` + "`completed`" + `: final. Rejects deposits and proofs with AlreadyCompleted.

There is no expiry: a funding project past its deadline can still complete.

## register_project

Checks, in order: goal > 0 (InvalidGoal), deadline > now (InvalidDeadline). No caller
authentication is required. A rejected registration consumes no id.

## set_oracle

The caller must be the admin (Unauthorized). Last write wins.

## verify_and_release

Checks, in order:
1. the project exists (NotFound)
2. an oracle is configured (NotConfigured)
3. the caller is the oracle (Unauthorized)
4. the project is still funding (AlreadyCompleted)
5. the proof equals the commitment (HashMismatch)

A mismatch leaves the project funding; a later correct proof still succeeds.

## deposit

The caller must be the donor (Unauthorized). amount > 0 (InvalidAmount), the project exists
(NotFound), it is still funding (AlreadyCompleted), and the balance stays within 128 bits
(BalanceOverflow).

## Atomicity

Each tool call is one transaction. A call that fails writes nothing, including events.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
