package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

const maxBodyBytes = 1 << 20

const (
	noticeCatalogUnavailable = "Lessons could not be loaded, showing the last known list"
	noticeNoSpaces           = "No spaces left for this lesson"
	noticeOrderSubmitted     = "Order submitted successfully"
)

var errBadRequestBody = errors.New("invalid request body")

type sortRequest struct {
	Key       domain.SortKey       `json:"key"`
	Direction domain.SortDirection `json:"direction"`
}

type addToCartRequest struct {
	LessonID domain.LessonID `json:"lessonId"`
}

type contactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errBadRequestBody, err.Error())
	}
	return nil
}

func badRequest(err error) (result, error) {
	return result{status: http.StatusBadRequest}, err
}

// catalogResult превращает ошибку загрузки каталога в уведомление:
// витрина отвечает 200 с прежним списком.
func catalogResult(err error) (result, error) {
	if err == nil {
		return result{}, nil
	}
	if domain.IsBackendError(err) {
		return result{notice: noticeCatalogUnavailable}, nil
	}
	return result{}, err
}

func (s *Server) state(r *http.Request, session *domain.Session) (result, error) {
	if session.CatalogLoaded {
		return result{}, nil
	}
	return catalogResult(s.svc.LoadAll(r.Context(), session))
}

func (s *Server) reload(r *http.Request, session *domain.Session) (result, error) {
	return catalogResult(s.svc.LoadAll(r.Context(), session))
}

func (s *Server) search(r *http.Request, session *domain.Session) (result, error) {
	return catalogResult(s.svc.Search(r.Context(), session, r.URL.Query().Get("query")))
}

func (s *Server) sort(r *http.Request, session *domain.Session) (result, error) {
	var req sortRequest
	if err := decodeBody(r, &req); err != nil {
		return badRequest(err)
	}
	if err := session.SortBy(req.Key, req.Direction); err != nil {
		return result{}, errors.Wrap(err, "sort lessons")
	}
	return result{}, nil
}

func (s *Server) addToCart(r *http.Request, session *domain.Session) (result, error) {
	var req addToCartRequest
	if err := decodeBody(r, &req); err != nil {
		return badRequest(err)
	}
	if req.LessonID.IsZero() {
		return badRequest(errors.Wrap(errBadRequestBody, "lessonId is required"))
	}

	_, err := s.svc.AddToCart(session, req.LessonID)
	switch {
	case errors.Is(err, domain.ErrNoSpacesLeft):
		return result{status: http.StatusConflict, notice: noticeNoSpaces}, nil
	case err != nil:
		return result{}, errors.Wrapf(err, "add lesson %s to cart", req.LessonID)
	}
	return result{status: http.StatusCreated}, nil
}

func (s *Server) removeFromCart(r *http.Request, session *domain.Session) (result, error) {
	lineID := mux.Vars(r)["lineId"]
	if err := s.svc.RemoveFromCart(session, lineID); err != nil {
		return result{}, errors.Wrapf(err, "remove cart line %s", lineID)
	}
	return result{}, nil
}

func (s *Server) toggleCart(_ *http.Request, session *domain.Session) (result, error) {
	session.ToggleCartPage()
	return result{}, nil
}

func (s *Server) setContact(r *http.Request, session *domain.Session) (result, error) {
	var req contactRequest
	if err := decodeBody(r, &req); err != nil {
		return badRequest(err)
	}
	session.SetContact(req.Name, req.Phone)
	return result{}, nil
}

func (s *Server) checkout(r *http.Request, session *domain.Session) (result, error) {
	if err := s.svc.SubmitOrder(r.Context(), session); err != nil {
		return result{}, errors.Wrap(err, "submit order")
	}
	return result{notice: noticeOrderSubmitted}, nil
}

func (s *Server) dismissConfirmation(_ *http.Request, session *domain.Session) (result, error) {
	session.DismissConfirmation()
	return result{}, nil
}
