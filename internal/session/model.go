package session

import "time"

// HeartbeatStep is the number of seconds credited per ping.
const HeartbeatStep = 10

// WatchSession is the per (user, video) record of watch time and unlock
// state. IsUnlocked only ever moves from false to true.
type WatchSession struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	VideoID        int       `db:"video_id" json:"video_id"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	LastPingTime   time.Time `db:"last_ping_time" json:"last_ping_time"`
	WatchedSeconds int       `db:"watched_seconds" json:"watched_seconds"`
	IsUnlocked     bool      `db:"is_unlocked" json:"is_unlocked"`
}

type PingResponse struct {
	WatchedSeconds int `json:"watched_seconds"`
}
