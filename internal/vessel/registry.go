// Package vessel keeps an operator session's vessel arrival requests.
package vessel

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/joseph-ayodele/port-compliance/constants"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/entity"
)

const (
	docsAwaitingUpload = "Aguardando Upload"
	opBerthing         = "Atracação"
)

var reVesselID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RegisterInput is a manual arrival request.
type RegisterInput struct {
	ID        string    `json:"navio_id"`
	Name      string    `json:"nome"`
	CargoType string    `json:"tipo_carga"`
	ETA       time.Time `json:"eta"`
	Berth     string    `json:"berco"`
	Agent     string    `json:"agente"`
	CallID    string    `json:"escala_id"`
}

// Registry is safe for concurrent use. Accessors return copies.
type Registry struct {
	mu      sync.RWMutex
	vessels []entity.Vessel
	now     func() time.Time
}

// NewRegistry returns a registry seeded with the demonstration fleet, ETAs relative to now().
func NewRegistry(now func() time.Time) *Registry {
	r := NewEmptyRegistry(now)
	r.vessels = seed(r.now())
	return r
}

func NewEmptyRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{now: now}
}

func seed(now time.Time) []entity.Vessel {
	approved := now
	opStart := now
	return []entity.Vessel{
		{
			ID:              "NV001",
			Name:            "MSC Daniela",
			CargoType:       "Contêineres",
			ETA:             now.Add(2 * time.Hour),
			Status:          constants.VesselApproved,
			Berth:           "Berço 3",
			Documents:       "Completos",
			Agent:           "Marítima Santos",
			AuthorizationID: "AUTH001",
			ApprovalDate:    &approved,
			OperationType:   opBerthing,
			OperationID:     "OP001",
			OperationStart:  &opStart,
			CallID:          "ESC001",
		},
		{
			ID:              "NV002",
			Name:            "Ever Given",
			CargoType:       "Carga Geral",
			ETA:             now.Add(4 * time.Hour),
			Status:          constants.VesselPending,
			Berth:           "Aguardando",
			Documents:       "Faltando DUE",
			Agent:           "Oceânica Ltda",
			AuthorizationID: "AUTH002",
			OperationType:   opBerthing,
			OperationID:     "OP002",
			CallID:          "ESC002",
		},
		{
			ID:              "NV003",
			Name:            "Maersk Lima",
			CargoType:       "Granéis",
			ETA:             now.Add(6 * time.Hour),
			Status:          constants.VesselInReview,
			Berth:           "Berço 1",
			Documents:       "Em Validação",
			Agent:           "Porto Seguro",
			AuthorizationID: "AUTH003",
			OperationType:   opBerthing,
			OperationID:     "OP003",
			CallID:          "ESC003",
		},
	}
}

// Register validates and appends a manual request. Authorization and operation ids are
// numbered from the registry size.
func (r *Registry) Register(in RegisterInput) (entity.Vessel, error) {
	v := common.NewValidator().
		Field("navio_id", in.ID, common.Required, common.MaxLength(32), common.Matches(reVesselID, "letters, digits, '-' or '_'")).
		Field("nome", in.Name, common.Required, common.MaxLength(120)).
		Field("agente", in.Agent, common.MaxLength(120))
	if v.HasErrors() {
		return entity.Vessel{}, v.Error()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(in.ID) >= 0 {
		return entity.Vessel{}, common.NewAppError("DUPLICATE_VESSEL", "navio_id already registered: "+in.ID, common.ErrInvalidInput)
	}

	n := len(r.vessels) + 1
	ves := entity.Vessel{
		ID:              in.ID,
		Name:            in.Name,
		CargoType:       in.CargoType,
		ETA:             in.ETA,
		Status:          constants.VesselPending,
		Berth:           in.Berth,
		Documents:       docsAwaitingUpload,
		Agent:           in.Agent,
		AuthorizationID: fmt.Sprintf("AUTH%03d", n),
		OperationType:   opBerthing,
		OperationID:     fmt.Sprintf("OP%03d", n),
		CallID:          in.CallID,
	}
	r.vessels = append(r.vessels, ves)
	return ves, nil
}

func (r *Registry) List() []entity.Vessel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Vessel, len(r.vessels))
	copy(out, r.vessels)
	return out
}

func (r *Registry) Get(id string) (entity.Vessel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(id)
	if i < 0 {
		return entity.Vessel{}, notFound(id)
	}
	return r.vessels[i], nil
}

var statusNames = func() []string {
	names := make([]string, len(constants.AllVesselStatuses))
	for i, st := range constants.AllVesselStatuses {
		names[i] = string(st)
	}
	return names
}()

// SetStatus records a harbour master decision. Approval stamps the approval date.
func (r *Registry) SetStatus(id string, status constants.VesselStatus) (entity.Vessel, error) {
	v := common.NewValidator().Field("status", string(status), common.OneOf(statusNames...))
	if v.HasErrors() {
		return entity.Vessel{}, common.NewAppError("INVALID_STATUS", v.ErrorMessage(), common.ErrInvalidInput)
	}
	return r.Update(id, func(v *entity.Vessel) {
		v.Status = status
		if status == constants.VesselApproved {
			t := r.now()
			v.ApprovalDate = &t
		}
	})
}

// Update applies fn to the stored vessel and returns the result.
func (r *Registry) Update(id string, fn func(*entity.Vessel)) (entity.Vessel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return entity.Vessel{}, notFound(id)
	}
	fn(&r.vessels[i])
	return r.vessels[i], nil
}

// Approved lists vessels cleared by the harbour master.
func (r *Registry) Approved() []entity.Vessel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Vessel
	for _, v := range r.vessels {
		if v.Status == constants.VesselApproved {
			out = append(out, v)
		}
	}
	return out
}

func (r *Registry) CountByStatus() map[constants.VesselStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[constants.VesselStatus]int, len(constants.AllVesselStatuses))
	for _, s := range constants.AllVesselStatuses {
		out[s] = 0
	}
	for _, v := range r.vessels {
		out[v.Status]++
	}
	return out
}

func (r *Registry) indexLocked(id string) int {
	for i := range r.vessels {
		if r.vessels[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return common.NewAppError("VESSEL_NOT_FOUND", "vessel not found: "+id, common.ErrNotFound)
}
