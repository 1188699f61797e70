package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Results"
	votersSheet  = "Votes by user"
)

// WriteResultsWorkbook renders all results as an XLSX workbook with one sheet
// of ranked standings and one sheet of ballots grouped by voter.
func WriteResultsWorkbook(w io.Writer, all *models.AllResults) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), resultsSheet); err != nil {
		return err
	}
	rows := [][]interface{}{{"Category", "Rank", "Participant", "Votes", "Voters"}}
	for _, cr := range all.CategoryResults {
		for i, r := range cr.Results {
			rows = append(rows, []interface{}{cr.CategoryName, i + 1, r.Participant, r.VoteCount, strings.Join(r.VoterHandles, ", ")})
		}
	}
	if err := writeRows(f, resultsSheet, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(votersSheet); err != nil {
		return err
	}
	voters := make([]string, 0, len(all.VotesByUser))
	for handle := range all.VotesByUser {
		voters = append(voters, handle)
	}
	sort.Strings(voters)
	rows = [][]interface{}{{"Voter", "Category", "Participant"}}
	for _, handle := range voters {
		for _, v := range all.VotesByUser[handle] {
			rows = append(rows, []interface{}{handle, v.CategoryName, v.ParticipantHandle})
		}
	}
	if err := writeRows(f, votersSheet, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
