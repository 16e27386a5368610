// Package calendar classifies dates as holidays, weekends or workdays based
// on CSV holiday files. It is a standalone lookup service; recurrence
// expansion uses raw weekdays and does not consult it.
package calendar

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DayType classifies one calendar date.
type DayType string

const (
	DayTypeHoliday DayType = "holiday"
	DayTypeWeekend DayType = "weekend"
	DayTypeWorkday DayType = "workday"
)

// Service answers holiday/weekend/workday queries. Holiday data is loaded
// once from CSV files at construction; lookups are safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	holidays map[string]struct{} // keys are YYYY-MM-DD
}

// New loads every *.csv file under dir. A missing directory is logged and
// tolerated; the service then only knows weekends.
func New(dir string) *Service {
	s := &Service{holidays: make(map[string]struct{})}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("calendar directory %s not readable: %v", dir, err)
		return s
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		count, err := s.loadCSV(path)
		if err != nil {
			log.Printf("failed to load holiday file %s: %v", path, err)
			continue
		}
		log.Printf("loaded %d holidays from %s", count, path)
	}

	return s
}

// loadCSV reads one holiday file. The expected layout is
// "Subject,Start Date,..." with dates written as YYYY/M/D; the header line
// and rows without a parseable date are skipped.
func (s *Service) loadCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	first := true
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			continue
		}
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		subject := strings.TrimSpace(parts[0])
		dateStr := strings.TrimSpace(parts[1])
		if subject == "" || dateStr == "" {
			continue
		}

		date, err := parseSlashDate(dateStr)
		if err != nil {
			continue
		}
		s.holidays[date.Format("2006-01-02")] = struct{}{}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}

	return count, nil
}

// parseSlashDate parses YYYY/M/D and YYYY/MM/DD dates.
func parseSlashDate(value string) (time.Time, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date format: %s", value)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %s: %w", value, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month in %s: %w", value, err)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in %s: %w", value, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date out of range: %s", value)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// IsHoliday reports whether the date appears in the loaded holiday files.
func (s *Service) IsHoliday(date time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.holidays[date.Format("2006-01-02")]
	return ok
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func (s *Service) IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Classify returns the day type, written holidays taking precedence over
// the raw weekday.
func (s *Service) Classify(date time.Time) DayType {
	switch {
	case s.IsHoliday(date):
		return DayTypeHoliday
	case s.IsWeekend(date):
		return DayTypeWeekend
	default:
		return DayTypeWorkday
	}
}

// HolidayCount returns how many distinct holidays are loaded.
func (s *Service) HolidayCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.holidays)
}
