package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/agentlink-service/internal/domain"
)

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// SaveProduct inserts a curated product record and returns the assigned
// id. Links are stored as JSONB keyed by agent code.
func (s *PostgresStore) SaveProduct(ctx context.Context, p *domain.Product) (int64, error) {
	linksJSON, err := json.Marshal(p.Links)
	if err != nil {
		return 0, fmt.Errorf("marshal product links: %w", err)
	}

	var id int64
	err = s.db.QueryRow(ctx,
		`INSERT INTO products (name, price, image, category, links, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING id`,
		p.Name, p.Price, p.Image, p.Category, linksJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

// FindProduct retrieves a stored product by id.
func (s *PostgresStore) FindProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	var linksJSON []byte
	err := s.db.QueryRow(ctx,
		`SELECT id, name, price, image, category, links, created_at, updated_at
		 FROM products WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Category, &linksJSON, &p.CreatedAt, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("not_found")
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(linksJSON, &p.Links); err != nil {
		return nil, err
	}
	return &p, nil
}
