package models

import "encoding/json"

// TriggerJob names one downstream function started after a sync
type TriggerJob struct {
	Name     string `json:"name"`
	Function string `json:"function"`
}

// ChatMessage is one entry of the chat messages document analyzed for sentiment
type ChatMessage struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// MessageResult reports the analysis of a single chat message
type MessageResult struct {
	OK        bool   `json:"ok"`
	Data      string `json:"data"` // message uid
	Sentiment string `json:"sentiment,omitempty"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

// SentimentReply is the payload returned by the analyze-data job
type SentimentReply struct {
	Status           int             `json:"status"`
	OK               bool            `json:"ok"`
	MessagesResponse []MessageResult `json:"messagesResponse"`
	Error            string          `json:"error,omitempty"`
}

// TranscriptionReply is the payload returned by the analyze-audio job
type TranscriptionReply struct {
	OK                bool            `json:"ok"`
	TranscribeResults json.RawMessage `json:"transcribeResults,omitempty"`
	Err               json.RawMessage `json:"err,omitempty"`
}

// TranscriptionDocument is the subset of an Amazon Transcribe output file
// read by the save-audio job
type TranscriptionDocument struct {
	JobName string `json:"jobName"`
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
	} `json:"results"`
}

// Transcript returns the first transcript of the document
func (d TranscriptionDocument) Transcript() string {
	if len(d.Results.Transcripts) == 0 {
		return ""
	}
	return d.Results.Transcripts[0].Transcript
}

// SaveAudioReply is the payload returned by the save-audio job
type SaveAudioReply struct {
	OK      bool   `json:"ok"`
	JobName string `json:"jobName,omitempty"`
	GUID    string `json:"guid,omitempty"`
	Message string `json:"message,omitempty"`
	Err     string `json:"err,omitempty"`
}
