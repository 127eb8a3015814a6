package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// suggestionLimit caps companies and skills offered as suggestions.
const suggestionLimit = 30

const candidateColumns = `
	c.id, c.parsed_id, c.name, c.current_title, c.current_company, c.years_experience,
	c.primary_sector, c.investment_approach, c.primary_geography, c.summary_blurb,
	c.top_skills, c.notable_experience, c.education_highlight, c.certifications,
	c.resume_path, c.created_at`

// ftsFields are the indexed columns of candidates_fts in declaration order.
var ftsFields = []string{
	"name",
	"current_title",
	"current_company",
	"skills",
	"experience_text",
	"education_text",
	"all_companies",
	"certifications",
}

// Search runs a full-text query over candidates.
// An empty query lists every candidate matching the filters ordered by name.
func (s *Store) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	filterSQL, filterArgs := filterClauses(opts.Filters)

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		stmt string
		args []any
	)
	if query == "" {
		stmt = `SELECT ` + candidateColumns + `, 0, COALESCE(q.quality_score, 0), COALESCE(q.grade, '')
			FROM candidates c
			LEFT JOIN quality_scores q ON q.candidate_id = c.id
			WHERE 1 = 1` + filterSQL + `
			ORDER BY c.name COLLATE NOCASE, c.id
			LIMIT ? OFFSET ?`
		args = append(filterArgs, limit, offset)
	} else {
		ftsCols := make([]string, len(ftsFields))
		for i, f := range ftsFields {
			ftsCols[i] = "candidates_fts." + f
		}
		stmt = `SELECT ` + candidateColumns + `, bm25(candidates_fts), COALESCE(q.quality_score, 0), COALESCE(q.grade, ''),
			` + strings.Join(ftsCols, ", ") + `
			FROM candidates_fts
			JOIN candidates c ON c.id = CAST(candidates_fts.candidate_id AS INTEGER)
			LEFT JOIN quality_scores q ON q.candidate_id = c.id
			WHERE candidates_fts MATCH ?` + filterSQL + `
			ORDER BY bm25(candidates_fts), c.id
			LIMIT ? OFFSET ?`
		args = append([]any{query}, filterArgs...)
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		if query != "" && isQuerySyntaxErr(err) {
			return nil, fmt.Errorf("%w: malformed search query %q: %w", domain.ErrInvalidInput, query, err)
		}
		return nil, fmt.Errorf("searching candidates: %w", err)
	}
	defer rows.Close()

	terms := queryTerms(query)

	//nolint:prealloc // size unknown from query
	var results []domain.SearchResult
	for rows.Next() {
		var (
			r     domain.SearchResult
			grade string
		)
		dest := []any{&r.Score, &r.QualityScore, &grade}
		var fieldText []string
		if query != "" {
			fieldText = make([]string, len(ftsFields))
			for i := range fieldText {
				dest = append(dest, &fieldText[i])
			}
		}

		c, err := scanCandidate(rows, dest...)
		if err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r.Candidate = c
		r.Grade, _ = domain.ParseGrade(grade)
		if query != "" {
			r.MatchedFields = matchedFields(terms, fieldText)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		if query != "" && isQuerySyntaxErr(err) {
			return nil, fmt.Errorf("%w: malformed search query %q: %w", domain.ErrInvalidInput, query, err)
		}
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	rows.Close()

	for i := range results {
		if err := s.aggregate(ctx, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// filterClauses renders the non-empty filters as AND clauses over c and q.
func filterClauses(f domain.SearchFilters) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	add := func(clause string, values ...any) {
		sb.WriteString(" AND ")
		sb.WriteString(clause)
		args = append(args, values...)
	}

	if v := strings.TrimSpace(f.Geography); v != "" {
		add("c.primary_geography = ? COLLATE NOCASE", v)
	}
	if v := strings.TrimSpace(f.Sector); v != "" {
		add("c.primary_sector = ? COLLATE NOCASE", v)
	}
	if v := strings.TrimSpace(f.Approach); v != "" {
		add("c.investment_approach = ? COLLATE NOCASE", v)
	}
	if v := strings.TrimSpace(f.Skill); v != "" {
		add(`(EXISTS (SELECT 1 FROM skills sk WHERE sk.candidate_id = c.id AND sk.skill = ? COLLATE NOCASE)
			OR EXISTS (SELECT 1 FROM json_each(c.top_skills) ts WHERE ts.value = ? COLLATE NOCASE))`, v, v)
	}
	if v := strings.TrimSpace(f.Company); v != "" {
		add("EXISTS (SELECT 1 FROM experiences ex WHERE ex.candidate_id = c.id AND ex.company = ? COLLATE NOCASE)", v)
	}
	if v := strings.TrimSpace(f.School); v != "" {
		add("EXISTS (SELECT 1 FROM education ed WHERE ed.candidate_id = c.id AND ed.school = ? COLLATE NOCASE)", v)
	}
	if v := strings.TrimSpace(f.Degree); v != "" {
		add("EXISTS (SELECT 1 FROM education ed WHERE ed.candidate_id = c.id AND ed.degree = ? COLLATE NOCASE)", v)
	}
	if f.MinQualityScore > 0 {
		add("COALESCE(q.quality_score, 0) >= ?", f.MinQualityScore)
	}
	return sb.String(), args
}

// aggregate fills the per-candidate lists of a search result.
func (s *Store) aggregate(ctx context.Context, r *domain.SearchResult) error {
	id := r.Candidate.ID

	skills, err := queryStrings(ctx, s.db,
		"SELECT skill FROM skills WHERE candidate_id = ? ORDER BY id", id)
	if err != nil {
		return fmt.Errorf("loading skills: %w", err)
	}
	r.Skills = domain.DedupeFold(skills, r.Candidate.TopSkills)
	if r.Skills == nil {
		r.Skills = []string{}
	}

	companies, err := queryStrings(ctx, s.db,
		"SELECT company FROM experiences WHERE candidate_id = ? AND company IS NOT NULL ORDER BY position", id)
	if err != nil {
		return fmt.Errorf("loading companies: %w", err)
	}
	r.Companies = dedupeOrdered(companies)

	schools, err := queryStrings(ctx, s.db,
		"SELECT school FROM education WHERE candidate_id = ? AND school IS NOT NULL ORDER BY position", id)
	if err != nil {
		return fmt.Errorf("loading schools: %w", err)
	}
	r.Schools = dedupeOrdered(schools)

	degrees, err := queryStrings(ctx, s.db,
		"SELECT degree FROM education WHERE candidate_id = ? AND degree IS NOT NULL ORDER BY position", id)
	if err != nil {
		return fmt.Errorf("loading degrees: %w", err)
	}
	r.Degrees = dedupeOrdered(degrees)
	r.HighestDegree = domain.HighestDegree(r.Degrees)
	return nil
}

// GetCandidate returns a candidate with its child rows and quality score.
func (s *Store) GetCandidate(ctx context.Context, id int64) (*domain.CandidateDetail, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates c WHERE c.id = ?`, id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting candidate: %w", err)
	}

	detail, err := loadChildren(ctx, s.db, c)
	if err != nil {
		return nil, err
	}

	quality, err := loadQuality(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	detail.Quality = quality
	return detail, nil
}

// ListCandidates returns every candidate ordered by name.
func (s *Store) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	return listCandidates(ctx, s.db)
}

func listCandidates(ctx context.Context, q querier) ([]domain.Candidate, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+candidateColumns+`
		FROM candidates c
		ORDER BY c.name COLLATE NOCASE, c.id`)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	defer rows.Close()

	//nolint:prealloc // size unknown from query
	var candidates []domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return candidates, nil
}

// FilterValues returns the sorted distinct values of a filter field.
func (s *Store) FilterValues(ctx context.Context, field domain.FilterField) ([]string, error) {
	if !field.IsValid() {
		return nil, fmt.Errorf("%w: unknown filter field %q", domain.ErrInvalidInput, field)
	}
	values, err := queryStrings(ctx, s.db, `
		SELECT field_value FROM filter_values
		WHERE field_name = ?
		ORDER BY field_value COLLATE NOCASE, field_value
	`, field.String())
	if err != nil {
		return nil, fmt.Errorf("listing filter values: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// Suggestions returns companies, skills and degrees for autocompletion,
// deduplicated case-insensitively and sorted.
func (s *Store) Suggestions(ctx context.Context) (domain.Suggestions, error) {
	companies, err := queryStrings(ctx, s.db, `
		SELECT field_value FROM filter_values WHERE field_name = ?
		ORDER BY id LIMIT ?
	`, domain.FilterCompany.String(), suggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("loading company suggestions: %w", err)
	}
	skills, err := queryStrings(ctx, s.db, `
		SELECT field_value FROM filter_values WHERE field_name = ?
		ORDER BY id LIMIT ?
	`, domain.FilterSkill.String(), suggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("loading skill suggestions: %w", err)
	}
	degrees, err := queryStrings(ctx, s.db, `
		SELECT field_value FROM filter_values WHERE field_name = ?
		ORDER BY id
	`, domain.FilterDegree.String())
	if err != nil {
		return nil, fmt.Errorf("loading degree suggestions: %w", err)
	}

	out := domain.DedupeFold(companies, skills, degrees)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	if out == nil {
		out = []string{}
	}
	return domain.Suggestions(out), nil
}

// Stats summarises the warehouse contents.
func (s *Store) Stats(ctx context.Context) (*domain.WarehouseStats, error) {
	stats := &domain.WarehouseStats{GradeDistribution: make(map[domain.Grade]int)}

	counts := []struct {
		table string
		dest  *int
	}{
		{"candidates", &stats.Candidates},
		{"experiences", &stats.Experiences},
		{"education", &stats.Education},
		{"skills", &stats.Skills},
		{"filter_values", &stats.FilterValues},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(quality_score), 0),
		       COALESCE(SUM(total_issues), 0),
		       COALESCE(SUM(json_array_length(issues, '$.critical')), 0)
		FROM quality_scores
	`).Scan(&stats.AverageScore, &stats.TotalIssues, &stats.CriticalIssues)
	if err != nil {
		return nil, fmt.Errorf("aggregating quality scores: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT grade, COUNT(*) FROM quality_scores GROUP BY grade")
	if err != nil {
		return nil, fmt.Errorf("counting grades: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			raw   string
			count int
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, fmt.Errorf("scanning grade count: %w", err)
		}
		if g, ok := domain.ParseGrade(raw); ok {
			stats.GradeDistribution[g] += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating grade counts: %w", err)
	}
	return stats, nil
}

// loadChildren reads the experiences, education and skills of a candidate.
func loadChildren(ctx context.Context, q querier, c domain.Candidate) (*domain.CandidateDetail, error) {
	detail := &domain.CandidateDetail{Candidate: c}

	exps, err := loadExperiences(ctx, q, c.ID)
	if err != nil {
		return nil, err
	}
	detail.Experiences = exps

	edus, err := loadEducation(ctx, q, c.ID)
	if err != nil {
		return nil, err
	}
	detail.Education = edus

	skills, err := loadSkills(ctx, q, c.ID)
	if err != nil {
		return nil, err
	}
	detail.Skills = skills
	return detail, nil
}

func loadExperiences(ctx context.Context, q querier, candidateID int64) ([]domain.ExperienceRow, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, candidate_id, position, company, title, start_date, end_date, sectors, approach,
		       client_type, num_companies_covered, num_sectors_covered, coverage_value,
		       regions_covered, sharpe_ratio, alpha, valuation_methods_used, quant_tools_used,
		       bullet_points
		FROM experiences
		WHERE candidate_id = ?
		ORDER BY position, id
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("querying experiences: %w", err)
	}
	defer rows.Close()

	exps := []domain.ExperienceRow{}
	for rows.Next() {
		var (
			e                                                domain.ExperienceRow
			company, title, start, end, approach, clientType sql.NullString
			coverage, alpha                                  sql.NullString
			sectors, regions, valuation, quantTools, bullets sql.NullString
			numCompanies, numSectors                         sql.NullInt64
			sharpe                                           sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.Position, &company, &title, &start, &end,
			&sectors, &approach, &clientType, &numCompanies, &numSectors, &coverage,
			&regions, &sharpe, &alpha, &valuation, &quantTools, &bullets); err != nil {
			return nil, fmt.Errorf("scanning experience: %w", err)
		}

		e.Company = company.String
		e.Title = title.String
		e.StartDate = start.String
		e.EndDate = end.String
		e.Approach = approach.String
		e.ClientType = clientType.String
		e.CoverageValue = coverage.String
		e.Alpha = alpha.String
		if numCompanies.Valid {
			v := int(numCompanies.Int64)
			e.NumCompaniesCovered = &v
		}
		if numSectors.Valid {
			v := int(numSectors.Int64)
			e.NumSectorsCovered = &v
		}
		if sharpe.Valid {
			v := sharpe.Float64
			e.SharpeRatio = &v
		}

		lists := []struct {
			raw  sql.NullString
			dest *[]string
		}{
			{sectors, &e.Sectors},
			{regions, &e.RegionsCovered},
			{valuation, &e.ValuationMethodsUsed},
			{quantTools, &e.QuantToolsUsed},
			{bullets, &e.BulletPoints},
		}
		for _, l := range lists {
			values, err := parseList(l.raw)
			if err != nil {
				return nil, fmt.Errorf("decoding experience %d: %w", e.ID, err)
			}
			*l.dest = values
		}

		exps = append(exps, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating experiences: %w", err)
	}
	return exps, nil
}

func loadEducation(ctx context.Context, q querier, candidateID int64) ([]domain.EducationRow, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, candidate_id, position, degree, major, school, start_date, end_date, honors
		FROM education
		WHERE candidate_id = ?
		ORDER BY position, id
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("querying education: %w", err)
	}
	defer rows.Close()

	edus := []domain.EducationRow{}
	for rows.Next() {
		var (
			e                                         domain.EducationRow
			degree, major, school, start, end, honors sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.Position,
			&degree, &major, &school, &start, &end, &honors); err != nil {
			return nil, fmt.Errorf("scanning education: %w", err)
		}
		e.Degree = degree.String
		e.Major = major.String
		e.School = school.String
		e.StartDate = start.String
		e.EndDate = end.String
		e.Honors = honors.String
		edus = append(edus, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating education: %w", err)
	}
	return edus, nil
}

func loadSkills(ctx context.Context, q querier, candidateID int64) ([]domain.SkillRow, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, candidate_id, skill FROM skills WHERE candidate_id = ? ORDER BY id", candidateID)
	if err != nil {
		return nil, fmt.Errorf("querying skills: %w", err)
	}
	defer rows.Close()

	skills := []domain.SkillRow{}
	for rows.Next() {
		var sk domain.SkillRow
		if err := rows.Scan(&sk.ID, &sk.CandidateID, &sk.Skill); err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}
		skills = append(skills, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skills: %w", err)
	}
	return skills, nil
}

// loadQuality returns the most recent quality score of a candidate, or nil.
func loadQuality(ctx context.Context, q querier, candidateID int64) (*domain.QualityScore, error) {
	var (
		qs                          domain.QualityScore
		grade, issues, completeness string
		createdAt                   string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, candidate_id, quality_score, grade, total_issues, issues, data_completeness, created_at
		FROM quality_scores
		WHERE candidate_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, candidateID).Scan(&qs.ID, &qs.CandidateID, &qs.QualityScore, &grade, &qs.TotalIssues,
		&issues, &completeness, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting quality score: %w", err)
	}

	qs.Grade, _ = domain.ParseGrade(grade)
	qs.CreatedAt = parseTime(createdAt)
	qs.Issues = domain.NewIssueSet()
	if err := json.Unmarshal([]byte(issues), &qs.Issues); err != nil {
		return nil, fmt.Errorf("unmarshaling issues: %w", err)
	}
	if err := json.Unmarshal([]byte(completeness), &qs.Completeness); err != nil {
		return nil, fmt.Errorf("unmarshaling completeness: %w", err)
	}
	return &qs, nil
}

// scanCandidate scans candidateColumns followed by any extra destinations.
func scanCandidate(sc scanner, extra ...any) (domain.Candidate, error) {
	var (
		c                                           domain.Candidate
		title, company, sector, approach, geography sql.NullString
		blurb, highlight, resumePath                sql.NullString
		topSkills, notable, certs                   sql.NullString
		createdAt                                   string
	)
	dest := []any{
		&c.ID, &c.ParsedID, &c.Name, &title, &company, &c.YearsExperience,
		&sector, &approach, &geography, &blurb,
		&topSkills, &notable, &highlight, &certs,
		&resumePath, &createdAt,
	}
	dest = append(dest, extra...)
	if err := sc.Scan(dest...); err != nil {
		return domain.Candidate{}, err
	}

	c.CurrentTitle = title.String
	c.CurrentCompany = company.String
	c.PrimarySector = sector.String
	c.InvestmentApproach = approach.String
	c.PrimaryGeography = geography.String
	c.SummaryBlurb = blurb.String
	c.EducationHighlight = highlight.String
	c.ResumePath = resumePath.String
	c.CreatedAt = parseTime(createdAt)

	var err error
	if c.TopSkills, err = parseList(topSkills); err != nil {
		return domain.Candidate{}, err
	}
	if c.NotableExperience, err = parseList(notable); err != nil {
		return domain.Candidate{}, err
	}
	if c.Certifications, err = parseList(certs); err != nil {
		return domain.Candidate{}, err
	}
	return c, nil
}

// queryStrings returns the first column of every row.
func queryStrings(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid {
			out = append(out, v.String)
		}
	}
	return out, rows.Err()
}

// dedupeOrdered drops blanks and case-insensitive duplicates, never returning nil.
func dedupeOrdered(values []string) []string {
	out := domain.DedupeFold(values)
	if out == nil {
		return []string{}
	}
	return out
}

// queryTerms extracts the bare search terms of an FTS5 query.
// Operators are dropped; a trailing * marks a prefix term.
func queryTerms(query string) []string {
	var terms []string
	for _, raw := range strings.FieldsFunc(query, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '"' || r == '(' || r == ')' || r == '\n'
	}) {
		switch raw {
		case "AND", "OR", "NOT", "NEAR":
			continue
		}
		if i := strings.IndexByte(raw, ':'); i >= 0 {
			raw = raw[i+1:]
		}
		term := strings.ToLower(strings.TrimLeft(raw, "-^+"))
		if term == "" || term == "*" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// matchedFields returns the index fields whose text contains any term.
func matchedFields(terms []string, fieldText []string) []string {
	var matched []string
	for i, text := range fieldText {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !isWordRune(r)
		})
		if fieldMatches(terms, words) {
			matched = append(matched, ftsFields[i])
		}
	}
	return matched
}

func fieldMatches(terms, words []string) bool {
	for _, term := range terms {
		prefix := strings.HasSuffix(term, "*")
		term = strings.TrimSuffix(term, "*")
		for _, w := range words {
			if w == term || (prefix && strings.HasPrefix(w, term)) {
				return true
			}
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r > 127
}
