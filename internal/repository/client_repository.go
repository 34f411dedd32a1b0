package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
)

const clientColumns = `id, name, address, phone, collector_id`

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES (:id, :name, :address, :phone, :collector_id)
	`

	_, err := r.db.NamedExecContext(ctx, query, client)
	return mapError(err, "client", client.ID)
}

func (r *clientRepository) GetByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, clientID); err != nil {
		return nil, mapError(err, "client", clientID)
	}

	return &client, nil
}

func (r *clientRepository) GetByIDs(ctx context.Context, clientIDs []string) (map[string]*domain.Client, error) {
	found := make(map[string]*domain.Client, len(clientIDs))
	if len(clientIDs) == 0 {
		return found, nil
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ANY($1)`

	var clients []*domain.Client
	if err := r.db.SelectContext(ctx, &clients, query, pq.Array(clientIDs)); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, c := range clients {
		found[c.ID] = c
	}
	return found, nil
}

func (r *clientRepository) ListByCollector(ctx context.Context, collectorID string) ([]*domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE collector_id = $1
		ORDER BY address, id
	`

	var clients []*domain.Client
	if err := r.db.SelectContext(ctx, &clients, query, collectorID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return clients, nil
}
