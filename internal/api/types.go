package api

// Subscription is a subscription as returned by GET /api/v1/subscribe/
type Subscription struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Year         string `json:"year"`
	Type         string `json:"type"` // 电影 or 电视剧
	Keyword      string `json:"keyword,omitempty"`
	TMDBID       int    `json:"tmdbid"`
	DoubanID     string `json:"doubanid,omitempty"`
	Season       int    `json:"season,omitempty"`
	Poster       string `json:"poster,omitempty"`
	TotalEpisode int    `json:"total_episode,omitempty"`
	StartEpisode int    `json:"start_episode,omitempty"`
	LackEpisode  int    `json:"lack_episode,omitempty"`
	Note         string `json:"note,omitempty"`
	State        string `json:"state"` // N new, R running, P pending, S stopped
	LastUpdate   string `json:"last_update"`
	Username     string `json:"username,omitempty"`
	SavePath     string `json:"save_path,omitempty"`
}

// IsTV reports whether the subscription tracks episodes.
func (s Subscription) IsTV() bool {
	return s.Type == MediaTypeTV
}

// Media types used by the dashboard.
const (
	MediaTypeMovie = "电影"
	MediaTypeTV    = "电视剧"
)

// MediaQuery identifies a media item for the missing-episode lookup.
type MediaQuery struct {
	TMDBID   int    `json:"tmdb_id,omitempty"`
	DoubanID string `json:"douban_id,omitempty"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Year     string `json:"year,omitempty"`
	Season   int    `json:"season,omitempty"`
}

// NotExistMediaInfo lists the episodes of one season missing from the media server.
type NotExistMediaInfo struct {
	Season       int   `json:"season"`
	Episodes     []int `json:"episodes"`
	TotalEpisode int   `json:"total_episode"`
	StartEpisode int   `json:"start_episode"`
}
