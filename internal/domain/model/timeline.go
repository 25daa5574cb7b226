package model

import "strconv"

// Timeline is the per-minute record of a completed match.
type Timeline struct {
	Info TimelineInfo `json:"info"`
}

// TimelineInfo holds the frame sequence.
type TimelineInfo struct {
	FrameInterval int64           `json:"frameInterval"`
	Frames        []TimelineFrame `json:"frames"`
}

// TimelineFrame is one snapshot of all participants, keyed by participant id.
type TimelineFrame struct {
	Timestamp         int64                       `json:"timestamp"`
	ParticipantFrames map[string]ParticipantFrame `json:"participantFrames"`
}

// ParticipantFrame is one participant's state at a frame.
type ParticipantFrame struct {
	TotalGold int      `json:"totalGold"`
	XP        int      `json:"xp"`
	Level     int      `json:"level"`
	Position  Position `json:"position"`
}

// Position is a map coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Frame returns the participant frame for a participant id, if present.
func (f TimelineFrame) Frame(participantID int) (ParticipantFrame, bool) {
	pf, ok := f.ParticipantFrames[strconv.Itoa(participantID)]
	return pf, ok
}

// Minute converts the frame timestamp (milliseconds) to minutes.
func (f TimelineFrame) Minute() float64 {
	return float64(f.Timestamp) / 60000.0
}
