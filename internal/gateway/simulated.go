package gateway

import "context"

const (
	defaultBerth     = "Berço 1"
	defaultPreposto  = "João Silva"
	capitaniaReceipt = "Solicitação recebida pela Capitania dos Portos"
)

// Simulated answers like the authority APIs do, without network access. Replies are
// deterministic and echo the ids of the request.
type Simulated struct{}

func NewSimulated() *Simulated { return &Simulated{} }

func (Simulated) SubmitAuthorization(_ context.Context, req AuthorizationRequest) (AuthorizationReply, error) {
	return AuthorizationReply{
		Success:         true,
		AuthorizationID: req.AuthorizationID,
		Status:          "processando",
		Message:         capitaniaReceipt,
	}, nil
}

func (Simulated) SyncOperation(_ context.Context, req OperationRequest) (OperationReply, error) {
	berth := req.Berth
	if berth == "" {
		berth = defaultBerth
	}
	return OperationReply{
		Success:       true,
		OperationID:   req.OperationID,
		Status:        "sincronizado",
		AssignedBerth: berth,
	}, nil
}

func (Simulated) RegisterCall(_ context.Context, req CallRequest) (CallReply, error) {
	return CallReply{
		Success: true,
		CallID:  req.CallID,
		Status:  "registrada",
		Agent:   defaultPreposto,
	}, nil
}

func (Simulated) Status(context.Context) []APIStatus {
	return []APIStatus{
		{Name: APICapitania, Status: StatusOnline},
		{Name: APITerminal, Status: StatusOnline},
		{Name: APIAgencia, Status: StatusOnline},
	}
}
