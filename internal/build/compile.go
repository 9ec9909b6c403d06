package build

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"git.home.luguber.info/inful/coursebuilder/internal/compiler"
	"git.home.luguber.info/inful/coursebuilder/internal/components"
	"git.home.luguber.info/inful/coursebuilder/internal/content"
	"git.home.luguber.info/inful/coursebuilder/internal/diagnostics"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatter"
)

// compiledArticle is one source document compiled for one locale.
type compiledArticle struct {
	entity *content.Entity
	file   content.ArticleFile
	stem   string
	front  *frontmatter.Article
	doc    *compiler.Document
}

// digest fingerprints one compiled artifact together with its searchable
// frontmatter. Folding these into the manifest makes the content hash
// sensitive to body and metadata edits, not just titles and configuration.
func (a *compiledArticle) digest() string {
	h := sha256.New()
	data, _ := json.Marshal(a.doc)
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(a.front.Description))
	for _, kw := range a.front.Keywords {
		h.Write([]byte{0})
		h.Write([]byte(kw))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// compiledSet holds every compiled artifact of the build, keyed by the owning
// entity's root-relative source path.
type compiledSet struct {
	byEntity map[string][]*compiledArticle
}

func (c *compiledSet) articlesOf(e *content.Entity) []*compiledArticle {
	return c.byEntity[e.Source.Rel]
}

// compileJob is one (entity, article file) unit of parallel work.
type compileJob struct {
	entity *content.Entity
	file   content.ArticleFile
}

// compileResult is one job's outcome. Results land in a slice indexed by job
// position, so merged diagnostics follow job declaration order, not worker
// completion order.
type compileResult struct {
	artifact *compiledArticle
	diags    []diagnostics.Diagnostic
}

// compileAll compiles every article of every entity across a worker pool.
// Jobs are enumerated in discovery order (entities sorted by path, files
// sorted by locale then stem), and results are merged back in that order so
// the diagnostic report and the compiled set are deterministic.
//
// A cancelled context is an error: a partial compile must never masquerade
// as a completed build.
func compileAll(ctx context.Context, entities []*content.Entity, opts Options) (*compiledSet, *diagnostics.List, error) {
	var jobs []compileJob
	for _, e := range entities {
		for _, f := range e.Articles {
			jobs = append(jobs, compileJob{entity: e, file: f})
		}
	}

	results := make([]compileResult, len(jobs))
	jobCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < opts.Jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobCh {
				results[idx] = compileOne(jobs[idx], opts.Registry)
			}
		}()
	}
feed:
	for idx := range jobs {
		select {
		case jobCh <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobCh)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("compile interrupted: %w", err)
	}

	diags := &diagnostics.List{}
	set := &compiledSet{byEntity: make(map[string][]*compiledArticle)}
	for _, res := range results {
		diags.Add(res.diags...)
		if res.artifact != nil {
			key := res.artifact.entity.Source.Rel
			set.byEntity[key] = append(set.byEntity[key], res.artifact)
		}
	}
	return set, diags, nil
}

// compileOne runs the full per-document pipeline: frontmatter split and
// validation, markup parsing, and component contract validation.
func compileOne(job compileJob, registry components.Registry) compileResult {
	res := compileResult{}
	raw, err := os.ReadFile(job.file.Path)
	if err != nil {
		res.diags = append(res.diags, diagnostics.Diagnostic{
			File:     job.file.Rel,
			Severity: diagnostics.SeverityError,
			Category: diagnostics.CategoryStructure,
			Rule:     "unreadable-file",
			Message:  fmt.Sprintf("read article: %v", err),
		})
		return res
	}

	fm, body, had, bodyLine, err := frontmatter.Split(raw)
	if err != nil {
		if errors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
			res.diags = append(res.diags, diagnostics.Diagnostic{
				File:     job.file.Rel,
				Line:     1,
				Severity: diagnostics.SeverityError,
				Category: diagnostics.CategoryStructure,
				Rule:     "unclosed-frontmatter",
				Message:  "frontmatter opening delimiter has no matching closing delimiter",
			})
		}
		return res
	}
	if !had {
		res.diags = append(res.diags, diagnostics.Diagnostic{
			File:     job.file.Rel,
			Line:     1,
			Severity: diagnostics.SeverityError,
			Category: diagnostics.CategoryStructure,
			Rule:     "missing-frontmatter",
			Message:  "article has no frontmatter block; title and slug are required",
		})
		return res
	}

	front, err := frontmatter.Parse(fm)
	if err != nil {
		res.diags = append(res.diags, diagnostics.Diagnostic{
			File:     job.file.Rel,
			Line:     2,
			Severity: diagnostics.SeverityError,
			Category: diagnostics.CategoryStructure,
			Rule:     "invalid-frontmatter",
			Message:  err.Error(),
		})
		return res
	}
	res.diags = append(res.diags, front.Validate(job.file.Rel, job.file.Stem)...)

	doc, compileDiags, err := compiler.Compile(body, job.file.Rel, bodyLine, registry)
	res.diags = append(res.diags, compileDiags...)
	if err != nil {
		var parseErr *components.ParseError
		if errors.As(err, &parseErr) {
			res.diags = append(res.diags, diagnostics.Diagnostic{
				File:     parseErr.File,
				Line:     parseErr.Line,
				Column:   parseErr.Column,
				Severity: diagnostics.SeverityError,
				Category: diagnostics.CategoryMarkup,
				Rule:     parseErr.Rule,
				Message:  parseErr.Message,
				Excerpt:  parseErr.Excerpt,
			})
		} else {
			res.diags = append(res.diags, diagnostics.Diagnostic{
				File:     job.file.Rel,
				Line:     bodyLine,
				Severity: diagnostics.SeverityError,
				Category: diagnostics.CategoryMarkup,
				Rule:     "parse-failure",
				Message:  err.Error(),
			})
		}
		return res
	}

	if hasErrors(res.diags) {
		return res
	}
	res.artifact = &compiledArticle{
		entity: job.entity,
		file:   job.file,
		stem:   job.file.Stem,
		front:  front,
		doc:    doc,
	}
	return res
}

func hasErrors(diags []diagnostics.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diagnostics.SeverityError {
			return true
		}
	}
	return false
}
