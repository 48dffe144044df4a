package adapthttp

import (
	"net/http"

	"gymsync/internal/app"
	"gymsync/internal/domain"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p, err := s.profiles.Profile(callerID(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := map[string]any{"user": callerID(r), "profile": p}
		if unit := r.URL.Query().Get("unit"); unit != "" && p.PersonalData.WeightKG != nil {
			v, err := domain.KGToUnit(*p.PersonalData.WeightKG, unit)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			resp["weight"] = map[string]any{"value": v, "unit": unit}
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPut:
		var body app.PersonalDataInput
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		data, err := s.profiles.UpdatePersonalData(r.Context(), callerID(r), body)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"personalData": data})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		days, err := s.profiles.Schedule(callerID(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"schedule": days})

	case http.MethodPut:
		var body struct {
			Schedule []domain.ScheduleDay `json:"schedule"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		days, err := s.profiles.UpdateSchedule(r.Context(), callerID(r), body.Schedule)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"schedule": days})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRoutine(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.profiles.Routine(callerID(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPut:
		var body struct {
			Items []domain.Exercise `json:"items"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		items, err := s.profiles.SetRoutine(r.Context(), callerID(r), body.Items)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRoutineExercise(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var body domain.Exercise
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		items, err := s.profiles.AddExercise(r.Context(), callerID(r), body)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodDelete:
		index := intQuery(r, "index", -1)
		items, err := s.profiles.RemoveExercise(r.Context(), callerID(r), index)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRoutineSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	counts, err := s.profiles.RoutineSummary(callerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"perDay": counts})
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Day string `json:"day"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.profiles.CompleteSession(r.Context(), callerID(r), body.Day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": rec})
}
