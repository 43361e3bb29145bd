package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Environment variable name for controlling statistics visibility.
const ENV_DEV_MODE = "DEV_MODE"

const statisticsFile = "statistics.json"

// Statistics represents the collected request statistics.
type Statistics struct {
	UniqueVisitors   map[string]time.Time `json:"uniqueVisitors"` // IP -> Last Visit Time
	AuditRequests    int                  `json:"auditRequests"`  // Total number of audit requests
	ErrorCount       int                  `json:"errorCount"`     // Number of errors
	PopularPages     map[string]int       `json:"popularPages"`   // Page title -> Count
	AverageAuditTime float64              `json:"averageAuditTime"`
	TotalAuditTime   float64              `json:"-"` // Used to calculate average
	RequestCount     int                  `json:"-"` // Used to calculate average
	LastPersisted    time.Time            `json:"lastPersisted"`
	filePath         string
	mutex            sync.RWMutex
}

var (
	stats *Statistics
	once  sync.Once
)

// Initialize creates or loads the statistics, persisted under dataDir.
func Initialize(dataDir string) *Statistics {
	once.Do(func() {
		stats = &Statistics{
			UniqueVisitors: make(map[string]time.Time),
			PopularPages:   make(map[string]int),
			LastPersisted:  time.Now(),
			filePath:       filepath.Join(dataDir, statisticsFile),
		}

		if err := stats.Load(); err != nil {
			fmt.Printf("Could not load existing statistics: %v\n", err)
		}
	})
	return stats
}

// TrackVisitor records a unique visitor.
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// cleanPageTitle normalizes a page title for aggregation.
func cleanPageTitle(title string) string {
	return strings.TrimSpace(title)
}

// TrackAudit records an audit request and how long handling it took.
func (s *Statistics) TrackAudit(pageTitle string, handleTime float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AuditRequests++

	if title := cleanPageTitle(pageTitle); title != "" {
		s.PopularPages[title]++
	}

	if hasError {
		s.ErrorCount++
	}

	s.TotalAuditTime += handleTime
	s.RequestCount++
	s.AverageAuditTime = s.TotalAuditTime / float64(s.RequestCount)
}

// GetUniqueVisitorsCount returns the number of unique visitors in the
// last 24 hours.
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)

	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}

	return count
}

// GetPopularPages returns up to N of the most audited page titles.
func (s *Statistics) GetPopularPages(n int) map[string]int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make(map[string]int)
	count := 0

	// Simple implementation - for production, use a heap or sorted data structure
	for title, freq := range s.PopularPages {
		if count < n {
			result[title] = freq
			count++
		}
	}

	return result
}

// GetErrorRate returns the error rate as a percentage.
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.AuditRequests == 0 {
		return 0
	}

	return (float64(s.ErrorCount) / float64(s.AuditRequests)) * 100
}

// Save persists the statistics to a file.
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = time.Now()

	file, err := os.Create(s.statisticsPath())
	if err != nil {
		return fmt.Errorf("could not create statistics file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("could not encode statistics: %v", err)
	}

	return nil
}

// statisticsPath resolves the persistence file, falling back to the
// working directory when no data directory was configured.
func (s *Statistics) statisticsPath() string {
	if s.filePath == "" {
		return statisticsFile
	}
	return s.filePath
}

// Load reads the statistics from a file.
func (s *Statistics) Load() error {
	file, err := os.Open(s.statisticsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("could not open statistics file: %v", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(s); err != nil {
		return fmt.Errorf("could not decode statistics: %v", err)
	}

	return nil
}

// GetStatistics returns a view of the current statistics. The full
// breakdown is only exposed in development mode.
func (s *Statistics) GetStatistics() map[string]interface{} {
	visitors := s.GetUniqueVisitorsCount()
	errorRate := s.GetErrorRate()

	s.mutex.RLock()
	requests := s.AuditRequests
	avgTime := s.AverageAuditTime
	s.mutex.RUnlock()

	result := map[string]interface{}{
		"uniqueVisitors24h": visitors,
		"totalRequests":     requests,
		"errorRate":         errorRate,
		"averageAuditTime":  avgTime,
	}

	if os.Getenv(ENV_DEV_MODE) == "true" {
		result["popularPages"] = s.GetPopularPages(5) // Top 5 pages only shown in dev mode
	}

	return result
}
