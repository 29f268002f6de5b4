package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"evalia/internal/api"
	"evalia/internal/dashboard"
	"evalia/internal/document"
	"evalia/internal/interview"
	"evalia/internal/metrics"
	"evalia/internal/speech"
	"evalia/internal/storage"
)

// MaxAudioSize bounds a recorded answer upload.
const MaxAudioSize = 25 << 20

const defaultAudioName = "answer.wav"

type answerResponse struct {
	Answer  *storage.AnswerRecord `json:"answer"`
	Session interview.View        `json:"session"`
}

type advanceResponse struct {
	Outcome interview.RoundOutcome `json:"outcome"`
	Session interview.View         `json:"session"`
}

type jobsResponse struct {
	Domain string              `json:"domain"`
	Jobs   []dashboard.JobLink `json:"jobs"`
}

type assistantResponse struct {
	Reply    string         `json:"reply,omitempty"`
	Messages []api.Message  `json:"messages"`
	Session  interview.View `json:"session"`
}

type statsResponse struct {
	metrics.Snapshot
	ActiveSessions int `json:"active_sessions"`
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &badRequest{err: err}
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Snapshot:       s.metrics.GetSnapshot(),
		ActiveSessions: s.sessions.Len(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.machine.NewSession()
	s.sessions.Add(r.Context(), sess)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(r.Context(), sessionFrom(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJobDescription(w http.ResponseWriter, r *http.Request) {
	text, err := readJobDescription(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sess := sessionFrom(r)
	if err := s.machine.SubmitJobDescription(r.Context(), sess, text); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// readJobDescription accepts {"text": ...} or a multipart form with a "file"
// upload (PDF, DOCX or text) or a "text" field.
func readJobDescription(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, document.MaxUploadSize+1<<20)

	if !isMultipart(r) {
		var body struct {
			Text string `json:"text"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return "", err
		}
		return body.Text, nil
	}

	if err := r.ParseMultipartForm(document.MaxUploadSize); err != nil {
		return "", &badRequest{err: err}
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return r.FormValue("text"), nil
	}
	if err != nil {
		return "", &badRequest{err: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", &badRequest{err: err}
	}
	text, err := document.ExtractText(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil && !errors.Is(err, document.ErrUnsupportedFormat) {
		return "", &badRequest{err: err}
	}
	return text, err
}

func (s *Server) handleConfirmDomain(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.machine.ConfirmDomain)
}

func (s *Server) handleRejectDomain(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.machine.RejectDomain)
}

func (s *Server) handleEditDomain(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Domain string `json:"domain"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	sess := sessionFrom(r)
	if err := s.machine.EditDomain(r.Context(), sess, body.Domain); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleCaptureAudio(w http.ResponseWriter, r *http.Request) {
	audio, err := readAudio(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sess := sessionFrom(r)
	if err := s.machine.CaptureAudio(r.Context(), sess, audio); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// readAudio accepts a multipart "audio" file or the raw request body.
func readAudio(w http.ResponseWriter, r *http.Request) (speech.Audio, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxAudioSize)

	if !isMultipart(r) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return speech.Audio{}, &badRequest{err: err}
		}
		return speech.Audio{
			Data:        data,
			Filename:    defaultAudioName,
			ContentType: r.Header.Get("Content-Type"),
		}, nil
	}

	if err := r.ParseMultipartForm(MaxAudioSize); err != nil {
		return speech.Audio{}, &badRequest{err: err}
	}
	file, header, err := r.FormFile("audio")
	if errors.Is(err, http.ErrMissingFile) {
		return speech.Audio{}, nil
	}
	if err != nil {
		return speech.Audio{}, &badRequest{err: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return speech.Audio{}, &badRequest{err: err}
	}
	name := header.Filename
	if name == "" {
		name = defaultAudioName
	}
	return speech.Audio{
		Data:        data,
		Filename:    name,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

func (s *Server) handleRerecord(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.machine.Rerecord)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	rec, err := s.machine.SubmitAnswer(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: rec, Session: sess.Snapshot()})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	out, err := s.machine.Advance(r.Context(), sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advanceResponse{Outcome: out, Session: sess.Snapshot()})
}

// onDashboard returns the session view when the dashboard is reachable.
func onDashboard(sess *interview.Session) (interview.View, error) {
	v := sess.Snapshot()
	if v.Round != interview.RoundDashboard && v.Round != interview.RoundChatbot {
		return v, fmt.Errorf("%w: dashboard not available in %s", interview.ErrInvalidTransition, v.Round)
	}
	return v, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if _, err := onDashboard(sessionFrom(r)); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.dashboard.Current(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	v, err := onDashboard(sessionFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	links, err := s.dashboard.JobLinks(r.Context(), v.Domain, r.URL.Query().Get("location"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobsResponse{Domain: v.Domain, Jobs: links})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.machine.Restart)
}

func (s *Server) handleOpenAssistant(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.machine.OpenAssistant(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	conv, err := s.machine.Assistant(sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assistantResponse{Messages: conv.History(), Session: sess.Snapshot()})
}

func (s *Server) handleAssistantMessage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	conv, err := s.machine.Assistant(sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := conv.Send(r.Context(), body.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.metrics.IncrementAssistantMessages()
	writeJSON(w, http.StatusOK, assistantResponse{
		Reply:    reply,
		Messages: conv.History(),
		Session:  sess.Snapshot(),
	})
}

func (s *Server) handleCloseAssistant(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, s.machine.ReturnFromAssistant)
}

// apply runs an event that needs no request body and answers with the
// session view.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, event func(ctx context.Context, sess *interview.Session) error) {
	sess := sessionFrom(r)
	if err := event(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}
