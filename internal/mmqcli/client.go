package mmqcli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Client provides typed access to the tool's subcommands.
type Client struct {
	runner Runner
	// SearchLimit is the default -n for searches when the caller passes 0.
	SearchLimit int
}

// NewClient wraps a Runner.
func NewClient(r Runner) *Client {
	return &Client{runner: r, SearchLimit: 10}
}

// mapErr converts a tool failure into ErrNotFound when the tool reported a
// missing collection or document on stderr.
func mapErr(err error) error {
	var execErr *ExecError
	if errors.As(err, &execErr) && strings.Contains(execErr.Stderr, "not found") {
		return fmt.Errorf("%s: %w", lastLine(execErr.Stderr), ErrNotFound)
	}
	return err
}

// ListCollections returns all collections known to the tool.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	out, err := c.runner.Run(ctx, "", "collection", "list")
	if err != nil {
		return nil, mapErr(err)
	}
	cols, _ := ParseCollections(out)
	return cols, nil
}

// CreateCollection registers a new collection. When indexNow is set the
// tool indexes the directory immediately and the indexed document count is
// returned (-1 when indexing was deferred).
func (c *Client) CreateCollection(ctx context.Context, name, path, mask string, indexNow bool) (int, error) {
	args := []string{"collection", "add", path, "--name", name}
	if mask != "" {
		args = append(args, "--mask", mask)
	}
	if indexNow {
		args = append(args, "--index")
	}

	out, err := c.runner.Run(ctx, "", args...)
	if err != nil {
		return 0, mapErr(err)
	}
	if !confirmCreated(out, name) {
		return 0, fmt.Errorf("create collection %q: no confirmation in output", name)
	}
	return ParseIndexedCount(out), nil
}

// RenameCollection renames a collection.
func (c *Client) RenameCollection(ctx context.Context, oldName, newName string) error {
	out, err := c.runner.Run(ctx, "", "collection", "rename", oldName, newName)
	if err != nil {
		return mapErr(err)
	}
	if !confirmRenamed(out, oldName, newName) {
		return fmt.Errorf("rename collection %q: no confirmation in output", oldName)
	}
	return nil
}

// RemoveCollection removes a collection. The tool asks for interactive
// confirmation on stdin, which we answer.
func (c *Client) RemoveCollection(ctx context.Context, name string) error {
	out, err := c.runner.Run(ctx, "y\n", "collection", "remove", name)
	if err != nil {
		return mapErr(err)
	}
	if !confirmRemoved(out, name) {
		return fmt.Errorf("remove collection %q: no confirmation in output", name)
	}
	return nil
}

// UpdateIndex reindexes a collection (all collections when name is empty)
// and returns the indexed document count, -1 when the tool did not report
// one.
func (c *Client) UpdateIndex(ctx context.Context, collection string) (int, error) {
	args := []string{"update"}
	if collection != "" {
		args = append(args, "--collection", collection)
	}
	out, err := c.runner.Run(ctx, "", args...)
	if err != nil {
		return 0, mapErr(err)
	}
	return ParseIndexedCount(out), nil
}

// Embed computes embeddings for documents that need them.
func (c *Client) Embed(ctx context.Context, collection string) (int, error) {
	args := []string{"embed"}
	if collection != "" {
		args = append(args, "--collection", collection)
	}
	out, err := c.runner.Run(ctx, "", args...)
	if err != nil {
		return 0, mapErr(err)
	}
	return ParseIndexedCount(out), nil
}

// Search runs one of the tool's search subcommands according to opts.Mode.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	sub := "search"
	switch opts.Mode {
	case ModeVector:
		sub = "vsearch"
	case ModeHybrid:
		sub = "query"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = c.SearchLimit
	}

	args := []string{sub, query, "-n", strconv.Itoa(limit)}
	if opts.MinScore > 0 {
		args = append(args, "--min-score", strconv.FormatFloat(opts.MinScore, 'f', -1, 64))
	}
	if opts.Collection != "" {
		args = append(args, "--collection", opts.Collection)
	}

	out, err := c.runner.Run(ctx, "", args...)
	if err != nil {
		return nil, mapErr(err)
	}
	results, _ := ParseSearchResults(out)
	return results, nil
}

// ListDocuments lists documents, optionally filtered to one collection.
func (c *Client) ListDocuments(ctx context.Context, collection string) ([]DocumentEntry, error) {
	args := []string{"ls"}
	if collection != "" {
		args = append(args, "--collection", collection)
	}
	out, err := c.runner.Run(ctx, "", args...)
	if err != nil {
		return nil, mapErr(err)
	}
	docs, _ := ParseDocumentList(out)
	return docs, nil
}

// GetDocument fetches one document with its full content.
func (c *Client) GetDocument(ctx context.Context, docID string) (*DocumentDetail, error) {
	out, err := c.runner.Run(ctx, "", "get", docID, "--full")
	if err != nil {
		return nil, mapErr(err)
	}
	doc, err := ParseDocumentDetail(out)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", docID, err)
	}
	return doc, nil
}

// Status reports the tool's index status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	out, err := c.runner.Run(ctx, "", "status")
	if err != nil {
		return Status{}, mapErr(err)
	}
	return ParseStatus(out)
}
