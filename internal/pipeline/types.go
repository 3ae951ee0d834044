package pipeline

// Word represents a single timed word from the diarized transcript.
type Word struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker"`
}

// Segment is one subtitle block: a contiguous run of words from one speaker.
type Segment struct {
	Words   []Word
	Speaker string
	Start   int64
	End     int64
	Text    string
}

// Turn is one screenplay paragraph for a single speaker.
type Turn struct {
	Speaker string
	Start   int64
	Text    string
}

// Transcript is the JSON document saved for every processed media file.
type Transcript struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Words        []Word `json:"words"`
	Status       string `json:"status"`
	AudioURL     string `json:"audio_url"`
	LanguageCode string `json:"language_code"`
}

// Clone returns a deep copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	c := *t
	if t.Words != nil {
		c.Words = make([]Word, len(t.Words))
		copy(c.Words, t.Words)
	}
	return &c
}
