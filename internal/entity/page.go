package entity

import "time"

type Author struct {
	Name string `json:"name"`
	// Profile page of the author.
	URL string `json:"url"`
	// Avatar of the same person as Name.
	Photo string `json:"photo"`
}

type Post struct {
	// Feed GUID or, when missing, the post link.
	ID    string `json:"id"`
	Title string `json:"title"`
	Link  string `json:"link"`
	// Always in UTC.
	PublishedAt time.Time `json:"publishedAt"`
	Snippet     string    `json:"snippet"`
	Authors     []Author  `json:"authors"`
	// Path of the header image relative to the site root.
	Thumbnail string `json:"thumbnail"`
}

type JobLocation struct {
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
	Remote  bool   `json:"remote,omitempty"`
}

type Job struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Location JobLocation `json:"location"`
}

type Paper struct {
	Authors    string `json:"authors"`
	Date       string `json:"date"`
	PaperURL   string `json:"paper_url"`
	AcceptedAt string `json:"accepted_at"`
	Title      string `json:"paper_title"`
}

type Talk struct {
	ID           string `json:"guid"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Presenter    string `json:"who"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	ThumbnailURL string `json:"thumb"`
}

type OpenSourceProject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Icon        string `json:"icon"`
}

type TeamArea struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Icon        string `json:"icon"`
}

// Datasets are the curated collections shipped with the site.
type Datasets struct {
	Papers     []Paper
	Talks      []Talk
	OpenSource []OpenSourceProject
	Teams      []TeamArea
}

// Page is the bounded model handed to the presentation layer.
type Page struct {
	Posts  []Post  `json:"posts"`
	Jobs   []Job   `json:"jobs"`
	Papers []Paper `json:"papers"`
	// Talks and MoreTalks are two consecutive rows of the same dataset.
	Talks      []Talk              `json:"talks"`
	MoreTalks  []Talk              `json:"moreTalks"`
	OpenSource []OpenSourceProject `json:"openSource"`
	Teams      []TeamArea          `json:"teams"`
}
