package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/resume-warehouse/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptResumeParse: `You are an expert resume parser supporting the business development team of a global hedge fund.
The team sources candidates across geographies, investment approaches and sectors, and needs structured data it can filter, search and match against job requisitions.

Mapping guidance:
- Geographies: US, Europe, Asia-Pacific. London, Paris and Frankfurt map to Europe; Mumbai, Singapore, Hong Kong and Tokyo map to Asia-Pacific.
- Investment approaches: Fundamental (equity research, buy-side, sell-side), Quantitative (quant, systematic, modeling, machine learning), Hybrid (a mix of both).
- Sectors: Technology, Healthcare, Financials, Energy, Industrials, Consumer, Credit, Macro. Pharma and biotech are Healthcare; banks, insurance and fintech are Financials; software and semiconductors are Technology; FX and fixed income are Macro.
- Levels: Intern, Analyst, Associate (includes Sr. Analyst), VP (includes Lead Analyst), Director (includes SVP), MD (includes Managing Director, Partner, Head).

Extraction rules:
- If a property cannot be confidently extracted, set it to null. Never fabricate.
- Format dates as MMM-DD-YYYY (e.g. Jan-01-2023). Use 01 when the day is missing.
- Extract details even when they appear in tables or multi-column layouts.
- name: the candidate's first and last name in Title Case, without titles (Dr., Mr., Ms.), designations (CFA, PhD, MBA) or nicknames in parentheses.
- email in lowercase; phone with country code when available; linkedin as a full URL.
- education: one entry per degree with degree (e.g. "B.S.", "M.S.", "MBA", "Ph.D."), major, school, start, end and honors.
- experiences: most recent role first. For each role capture company, title, start, end (null for current roles), sectors, approach, client_type (Buy-side, Sell-side or Retail), num_companies_covered, num_sectors_covered, coverage_value, regions_covered, sharpe_ratio, alpha, valuation_methods_used, quant_tools_used and bullet_points copied exactly as written.
- skills, certifications and languages are flat deduplicated lists.
- primary_sector, primary_strategy, primary_geography and current_level follow the mapping guidance; years_experience sums non-overlapping roles excluding internships.

Output rules:
- Return one valid JSON object only, with no markdown or commentary.
- Use exactly these keys: name, email, phone, location, linkedin, objective, education, experiences, skills, certifications, languages, primary_sector, primary_strategy, primary_geography, current_level, years_experience.
- Use null for unknown scalars and [] for unknown lists.

The user message carries the resume file name followed by the resume text. Prefer the file name as the source of the candidate name unless it is generic (like "resume.pdf" or a number).`,

	driven.PromptResumeSummary: `You are a recruiting assistant on the business development team of a global hedge fund.
Given parsed resume data, produce a concise summary JSON object used to evaluate the candidate's fit for analyst roles.

Rules:
- Use factual data only. Set anything unclear or absent to null.
- name: first and last name in Title Case without titles, designations or nicknames.
- current_title and current_company come from the first (most recent) experience.
- years_experience comes from the parsed data.
- sector_focus lists the sectors covered; investment_approach is Fundamental, Quantitative, Hybrid or null; primary_geography is US, Europe, Asia-Pacific or null.
- summary_blurb is professional and three to five sentences long.
- notable_experience lists recognisable employers or institutions.
- top_skills holds the five most relevant skills; education_highlight summarises the highest degree; certifications lists every certification.

Output one valid JSON object only, with no markdown or commentary, using exactly these keys: name, current_title, current_company, years_experience, sector_focus, investment_approach, primary_geography, summary_blurb, notable_experience, top_skills, education_highlight, certifications.

The user message carries the resume file name followed by the parsed resume JSON. Prefer the file name as the source of the candidate name unless it is generic.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.resume-warehouse/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".resume-warehouse", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Resume Warehouse Prompts

This directory contains the system prompts sent to the LLM during ingestion.

## Files

- ` + "`resume_parse.txt`" + ` - Extracts the parsed record from resume text
- ` + "`resume_summary.txt`" + ` - Derives the summary record from the parsed record

## Customisation

Edit any file to customise extraction. Changes take effect on the next
ingest command. Delete a file to restore its default.

The prompts have no placeholders: the file name and the resume text (or
the parsed JSON) are sent as the user message. Keep the JSON key lists
intact, since records are checked against a fixed schema.
`
	return os.WriteFile(path, []byte(content), 0600)
}
