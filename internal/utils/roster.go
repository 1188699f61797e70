package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"gopkg.in/yaml.v3"
)

// RosterFile is the YAML layout accepted by the pre-registration tool
type RosterFile struct {
	Users []RosterEntry `yaml:"users"`
}

// RosterEntry is one user to pre-register
type RosterEntry struct {
	Handle  string `yaml:"handle"`
	Name    string `yaml:"name"`
	IsAdmin bool   `yaml:"isAdmin"`
}

// ParseRoster reads a user roster. The format is picked from the file name:
// ".csv" is read as CSV with a header row (handle,name[,isAdmin]), anything else as YAML.
func ParseRoster(fileName string, r io.Reader) ([]models.CreateUserRequest, error) {
	var entries []RosterEntry
	var err error
	if strings.EqualFold(filepath.Ext(fileName), ".csv") {
		entries, err = parseRosterCSV(r)
	} else {
		entries, err = parseRosterYAML(r)
	}
	if err != nil {
		return nil, err
	}

	requests := make([]models.CreateUserRequest, 0, len(entries))
	for i, e := range entries {
		handle := NormalizeHandle(e.Handle)
		name := strings.TrimSpace(e.Name)
		if handle == "" || name == "" {
			return nil, fmt.Errorf("entry %d: handle and name are required", i+1)
		}
		requests = append(requests, models.CreateUserRequest{Handle: handle, Name: name, IsAdmin: e.IsAdmin})
	}
	return requests, nil
}

func parseRosterYAML(r io.Reader) ([]RosterEntry, error) {
	var file RosterFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}
	return file.Users, nil
}

func parseRosterCSV(r io.Reader) ([]RosterEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int)
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}
	handleIdx, okHandle := columns["handle"]
	nameIdx, okName := columns["name"]
	if !okHandle || !okName {
		return nil, errors.New("csv header must contain handle and name")
	}
	adminIdx, hasAdmin := columns["isadmin"]

	var entries []RosterEntry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entry := RosterEntry{Handle: field(record, handleIdx), Name: field(record, nameIdx)}
		if hasAdmin {
			if raw := field(record, adminIdx); raw != "" {
				entry.IsAdmin, err = strconv.ParseBool(raw)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid isAdmin %q", line, raw)
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
