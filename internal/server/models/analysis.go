package models

import "time"

type Language struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
}

// Analysis is a stored repository analysis report.
type Analysis struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"userId"`
	RepoURL      string     `json:"repoUrl"`
	RepoName     string     `json:"repoName"`
	LinesOfCode  int        `json:"linesOfCode"`
	Commits      int        `json:"commits"`
	Contributors int        `json:"contributors"`
	LastUpdated  time.Time  `json:"lastUpdated"`
	Languages    []Language `json:"languages"`
	Branches     int        `json:"branches"`
	Issues       int        `json:"issues"`
	Stars        int        `json:"stars"`
	Forks        int        `json:"forks"`
	TestCoverage int        `json:"testCoverage"`
	CodeQuality  string     `json:"codeQuality"`
	ArchiveKey   string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ActivityEntry is one line of the teacher dashboard's recent activity.
type ActivityEntry struct {
	Type  string    `json:"type"`
	Title string    `json:"title"`
	Time  time.Time `json:"time"`
}
