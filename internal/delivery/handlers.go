package delivery

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Vovarama1992/quickcare/internal/consult"
	"github.com/Vovarama1992/quickcare/internal/ports"
	"github.com/Vovarama1992/quickcare/internal/speech"
)

const (
	maxUploadBytes = 25 << 20
	maxMemoryBytes = 8 << 20
)

type ConsultService interface {
	Process(ctx context.Context, in consult.Input) (*consult.Consultation, error)
	Speak(ctx context.Context, text string) (*consult.Consultation, error)
	History(ctx context.Context, limit int) ([]ports.ConsultationRecord, error)
}

type ConsultHandler struct {
	svc       ConsultService
	outputDir string
	log       *zap.Logger
}

func NewConsultHandler(svc ConsultService, outputDir string, log *zap.Logger) *ConsultHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConsultHandler{svc: svc, outputDir: outputDir, log: log.Named("http")}
}

// POST /consult, multipart: audio (required), image (optional)
func (h *ConsultHandler) Consult(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	tmpDir, err := os.MkdirTemp("", "quickcare-upload-*")
	if err != nil {
		h.log.Error("create upload dir", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	audioPath, err := saveUpload(r, "audio", tmpDir, ".webm")
	if err != nil {
		http.Error(w, "missing audio: "+err.Error(), http.StatusBadRequest)
		return
	}

	imagePath, err := saveUpload(r, "image", tmpDir, ".jpg")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Process(r.Context(), consult.Input{AudioPath: audioPath, ImagePath: imagePath})
	if err != nil {
		if errors.Is(err, consult.ErrNoAudio) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("consultation failed", zap.Error(err))
		http.Error(w, "consultation failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

type speechRequest struct {
	Text string `json:"text"`
}

type speechResponse struct {
	ID              string  `json:"id"`
	AudioURL        string  `json:"audio_url"`
	Provider        string  `json:"provider"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// POST /speech {"text": "..."}
func (h *ConsultHandler) Speech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Speak(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, speech.ErrInvalidInput) {
			http.Error(w, "text is required", http.StatusBadRequest)
			return
		}
		h.log.Error("speech failed", zap.Error(err))
		http.Error(w, "speech synthesis failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, speechResponse{
		ID:              c.ID,
		AudioURL:        c.AudioURL,
		Provider:        c.Provider,
		DurationSeconds: c.DurationSeconds,
	})
}

// GET /audio/{name}
func (h *ConsultHandler) Audio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}

	if strings.EqualFold(filepath.Ext(name), ".mp3") {
		w.Header().Set("Content-Type", "audio/mpeg")
	}
	http.ServeFile(w, r, path)
}

// GET /consultations?limit=N
func (h *ConsultHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.svc.History(r.Context(), limit)
	if err != nil {
		h.log.Error("history", zap.Error(err))
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []ports.ConsultationRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

func saveUpload(r *http.Request, field, dir, defaultExt string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return copyUpload(file, header, field, dir, defaultExt)
}

// the extension is kept because transcription APIs infer the codec from it
func copyUpload(file multipart.File, header *multipart.FileHeader, field, dir, defaultExt string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = defaultExt
	}

	out, err := os.CreateTemp(dir, field+"-*"+ext)
	if err != nil {
		return "", err
	}
	defer out.Close()

	n, err := io.Copy(out, file)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", errors.New(field + " is empty")
	}
	return out.Name(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
