package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/resume-warehouse/internal/core/domain"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Ingest replaces the candidate identified by rec with its normalisation.
// Purge and insert run in one transaction; any failure leaves the
// warehouse exactly as it was.
func (s *Store) Ingest(ctx context.Context, rec domain.IngestRecord) (int64, error) {
	if !rec.Named() {
		return 0, fmt.Errorf("%w: %w", domain.ErrMissingName, domain.ErrSchemaViolation)
	}

	unlock := s.locks.Lock(rec.IdentityKey())
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := purgeIdentity(ctx, tx, rec); err != nil {
		return 0, err
	}

	now := formatTime(s.now())

	parsedID, err := insertParsed(ctx, tx, rec, now)
	if err != nil {
		return 0, classifyWriteErr(err)
	}

	candidate := domain.ProjectCandidate(rec)
	candidate.ParsedID = parsedID
	candidate.ID, err = insertCandidate(ctx, tx, candidate, now)
	if err != nil {
		return 0, classifyWriteErr(err)
	}

	exps := domain.NormaliseExperiences(rec.Parsed)
	edus := domain.NormaliseEducation(rec.Parsed)
	skills := domain.NormaliseSkills(rec.Parsed)

	if err := insertChildren(ctx, tx, candidate.ID, exps, edus, skills); err != nil {
		return 0, classifyWriteErr(err)
	}
	if err := insertQuality(ctx, tx, candidate.ID, rec.Validation, now); err != nil {
		return 0, classifyWriteErr(err)
	}
	if err := upsertSearchEntry(ctx, tx, domain.BuildSearchEntry(candidate, exps, edus, skills)); err != nil {
		return 0, err
	}
	if err := insertFilterValues(ctx, tx, domain.CollectFilterValues(candidate, exps, edus, skills), now); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", classifyWriteErr(err))
	}
	return candidate.ID, nil
}

// DeleteCandidate removes a candidate, its children, its index entry and its archive row.
func (s *Store) DeleteCandidate(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("looking up candidate: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}

	if err := deleteCandidate(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Reindex rebuilds every search index entry from relational state.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM candidates_fts"); err != nil {
		return 0, fmt.Errorf("clearing search index: %w", err)
	}

	candidates, err := listCandidates(ctx, tx)
	if err != nil {
		return 0, err
	}

	for _, c := range candidates {
		detail, err := loadChildren(ctx, tx, c)
		if err != nil {
			return 0, err
		}
		entry := domain.BuildSearchEntry(c, detail.Experiences, detail.Education, detail.Skills)
		if err := upsertSearchEntry(ctx, tx, entry); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(candidates), nil
}

// purgeIdentity deletes every candidate sharing rec's identity key, plus any
// archive rows for the same resume path left without a candidate.
func purgeIdentity(ctx context.Context, tx *sql.Tx, rec domain.IngestRecord) error {
	var rows *sql.Rows
	var err error
	path := rec.ResumePath()
	if path != "" {
		rows, err = tx.QueryContext(ctx, "SELECT id FROM candidates WHERE resume_path = ?", path)
	} else {
		rows, err = tx.QueryContext(ctx, `
			SELECT id FROM candidates
			WHERE name = ? AND (resume_path IS NULL OR resume_path = '')
		`, rec.CandidateName())
	}
	if err != nil {
		return fmt.Errorf("finding prior candidates: %w", err)
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scanning candidate id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating prior candidates: %w", err)
	}
	rows.Close()

	for _, id := range ids {
		if err := deleteCandidate(ctx, tx, id); err != nil {
			return err
		}
	}

	if path != "" {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM parsed_resumes
			WHERE resume_path = ? AND id NOT IN (SELECT parsed_id FROM candidates)
		`, path); err != nil {
			return fmt.Errorf("purging orphan archives: %w", err)
		}
	}
	return nil
}

// deleteCandidate removes one candidate and everything derived from it.
// Children go first so foreign keys hold at every step.
func deleteCandidate(ctx context.Context, tx *sql.Tx, id int64) error {
	var parsedID int64
	if err := tx.QueryRowContext(ctx, "SELECT parsed_id FROM candidates WHERE id = ?", id).Scan(&parsedID); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return fmt.Errorf("looking up candidate: %w", err)
	}

	statements := []struct {
		what  string
		query string
		arg   int64
	}{
		{"skills", "DELETE FROM skills WHERE candidate_id = ?", id},
		{"experiences", "DELETE FROM experiences WHERE candidate_id = ?", id},
		{"education", "DELETE FROM education WHERE candidate_id = ?", id},
		{"quality scores", "DELETE FROM quality_scores WHERE candidate_id = ?", id},
		{"search entry", "DELETE FROM candidates_fts WHERE candidate_id = ?", id},
		{"candidate", "DELETE FROM candidates WHERE id = ?", id},
		{"parsed archive", "DELETE FROM parsed_resumes WHERE id = ?", parsedID},
	}
	for _, st := range statements {
		if _, err := tx.ExecContext(ctx, st.query, st.arg); err != nil {
			return fmt.Errorf("deleting %s: %w", st.what, classifyWriteErr(err))
		}
	}
	return nil
}

func insertParsed(ctx context.Context, tx *sql.Tx, rec domain.IngestRecord, now string) (int64, error) {
	parsed := rec.Parsed
	if parsed == nil {
		parsed = &domain.ParsedRecord{}
	}
	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		return 0, fmt.Errorf("marshalling parsed record: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO parsed_resumes (candidate_name, parsed_json, source_file, resume_path, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.CandidateName(), string(parsedJSON), rec.ArchiveSourceFile(), nullString(rec.ResumePath()), now)
	if err != nil {
		return 0, fmt.Errorf("inserting parsed archive: %w", err)
	}
	return res.LastInsertId()
}

func insertCandidate(ctx context.Context, tx *sql.Tx, c domain.Candidate, now string) (int64, error) {
	topSkills, err := jsonList(c.TopSkills)
	if err != nil {
		return 0, fmt.Errorf("marshalling top skills: %w", err)
	}
	notable, err := jsonList(c.NotableExperience)
	if err != nil {
		return 0, fmt.Errorf("marshalling notable experience: %w", err)
	}
	certs, err := jsonList(c.Certifications)
	if err != nil {
		return 0, fmt.Errorf("marshalling certifications: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO candidates (
			parsed_id, name, current_title, current_company, years_experience,
			primary_sector, investment_approach, primary_geography, summary_blurb,
			top_skills, notable_experience, education_highlight, certifications,
			resume_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ParsedID, c.Name, nullString(c.CurrentTitle), nullString(c.CurrentCompany), c.YearsExperience,
		nullString(c.PrimarySector), nullString(c.InvestmentApproach), nullString(c.PrimaryGeography),
		nullString(c.SummaryBlurb), topSkills, notable, nullString(c.EducationHighlight), certs,
		nullString(c.ResumePath), now)
	if err != nil {
		return 0, fmt.Errorf("inserting candidate: %w", err)
	}
	return res.LastInsertId()
}

func insertChildren(ctx context.Context, tx *sql.Tx, candidateID int64,
	exps []domain.ExperienceRow, edus []domain.EducationRow, skills []domain.SkillRow) error {
	expStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO experiences (
			candidate_id, position, company, title, start_date, end_date, sectors, approach,
			client_type, num_companies_covered, num_sectors_covered, coverage_value,
			regions_covered, sharpe_ratio, alpha, valuation_methods_used, quant_tools_used,
			bullet_points
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer expStmt.Close()

	for _, e := range exps {
		lists, err := encodeLists(e.Sectors, e.RegionsCovered, e.ValuationMethodsUsed, e.QuantToolsUsed, e.BulletPoints)
		if err != nil {
			return fmt.Errorf("marshalling experience lists: %w", err)
		}
		if _, err := expStmt.ExecContext(ctx, candidateID, e.Position,
			nullString(e.Company), nullString(e.Title), nullString(e.StartDate), nullString(e.EndDate),
			lists[0], nullString(e.Approach), nullString(e.ClientType),
			nullInt(e.NumCompaniesCovered), nullInt(e.NumSectorsCovered), nullString(e.CoverageValue),
			lists[1], nullFloat(e.SharpeRatio), nullString(e.Alpha), lists[2], lists[3], lists[4]); err != nil {
			return fmt.Errorf("inserting experience: %w", err)
		}
	}

	for _, e := range edus {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO education (candidate_id, position, degree, major, school, start_date, end_date, honors)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, candidateID, e.Position, nullString(e.Degree), nullString(e.Major), nullString(e.School),
			nullString(e.StartDate), nullString(e.EndDate), nullString(e.Honors)); err != nil {
			return fmt.Errorf("inserting education: %w", err)
		}
	}

	for _, sk := range skills {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO skills (candidate_id, skill) VALUES (?, ?)", candidateID, sk.Skill); err != nil {
			return fmt.Errorf("inserting skill: %w", err)
		}
	}
	return nil
}

func encodeLists(lists ...[]string) ([]string, error) {
	out := make([]string, len(lists))
	for i, l := range lists {
		encoded, err := jsonList(l)
		if err != nil {
			return nil, err
		}
		out[i] = encoded
	}
	return out, nil
}

func insertQuality(ctx context.Context, tx *sql.Tx, candidateID int64, v domain.ValidationResult, now string) error {
	issues, err := json.Marshal(v.Issues)
	if err != nil {
		return fmt.Errorf("marshalling issues: %w", err)
	}
	completeness, err := json.Marshal(v.Completeness)
	if err != nil {
		return fmt.Errorf("marshalling completeness: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quality_scores (
			candidate_id, quality_score, grade, total_issues, issues, data_completeness, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, candidateID, v.QualityScore, v.Grade.String(), v.TotalIssues, string(issues), string(completeness), now)
	if err != nil {
		return fmt.Errorf("inserting quality score: %w", err)
	}
	return nil
}

// upsertSearchEntry replaces the index entry of a candidate.
func upsertSearchEntry(ctx context.Context, q querier, e domain.SearchIndexEntry) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM candidates_fts WHERE candidate_id = ?", e.CandidateID); err != nil {
		return fmt.Errorf("deleting search entry: %w", err)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO candidates_fts (
			candidate_id, name, current_title, current_company, skills,
			experience_text, education_text, all_companies, certifications
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.CandidateID, e.Name, e.CurrentTitle, e.CurrentCompany, e.Skills,
		e.ExperienceText, e.EducationText, e.AllCompanies, e.Certifications)
	if err != nil {
		return fmt.Errorf("inserting search entry: %w", err)
	}
	return nil
}

// insertFilterValues adds pairs to the filter cache. Existing pairs are left alone.
func insertFilterValues(ctx context.Context, tx *sql.Tx, values []domain.FilterValue, now string) error {
	if len(values) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO filter_values (field_name, field_value, created_at)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, fv := range values {
		if _, err := stmt.ExecContext(ctx, fv.Field.String(), fv.Value, now); err != nil {
			return fmt.Errorf("inserting filter value %s=%q: %w", fv.Field, fv.Value, err)
		}
	}
	return nil
}
