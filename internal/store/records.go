package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	bolt "github.com/boltdb/bolt"

	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

// ListClients returns the owner's clients, newest first
func (s *Store) ListClients(ctx context.Context, ownerID string) ([]models.Client, error) {
	clients := []models.Client{}
	err := s.view(ctx, func(tx *bolt.Tx) error {
		return each(ownerBucket(tx, ownerID, clientsBucket), func(c *models.Client) error {
			c.OwnerID = ownerID
			clients = append(clients, *c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})
	return clients, nil
}

// GetClient returns gateway.ErrNotFound for a client of another owner
func (s *Store) GetClient(ctx context.Context, ownerID, clientID string) (*models.Client, error) {
	var client models.Client
	err := s.view(ctx, func(tx *bolt.Tx) error {
		b := ownerBucket(tx, ownerID, clientsBucket)
		if b == nil {
			return gateway.ErrNotFound
		}
		v := b.Get([]byte(clientID))
		if v == nil {
			return gateway.ErrNotFound
		}
		return json.Unmarshal(v, &client)
	})
	if err != nil {
		return nil, err
	}
	client.OwnerID = ownerID
	return &client, nil
}

func (s *Store) InsertClient(ctx context.Context, client *models.Client) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		b, err := ownerBucketForWrite(tx, client.OwnerID, clientsBucket)
		if err != nil {
			return fmt.Errorf("failed to insert client: %w", err)
		}
		return put(b, client.ID, client)
	})
}

// UpdateClient overwrites every field but the creation time
func (s *Store) UpdateClient(ctx context.Context, client *models.Client) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		b := ownerBucket(tx, client.OwnerID, clientsBucket)
		if b == nil {
			return gateway.ErrNotFound
		}
		v := b.Get([]byte(client.ID))
		if v == nil {
			return gateway.ErrNotFound
		}
		var existing models.Client
		if err := json.Unmarshal(v, &existing); err != nil {
			return err
		}
		client.CreatedAt = existing.CreatedAt
		return put(b, client.ID, client)
	})
}

// DeleteClient removes the client along with its flights and payments
func (s *Store) DeleteClient(ctx context.Context, ownerID, clientID string) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		clients := ownerBucket(tx, ownerID, clientsBucket)
		if clients == nil || clients.Get([]byte(clientID)) == nil {
			return gateway.ErrNotFound
		}
		if err := clients.Delete([]byte(clientID)); err != nil {
			return err
		}

		if err := deleteWhere(ownerBucket(tx, ownerID, flightsBucket), func(v []byte) (bool, error) {
			var f models.Flight
			err := json.Unmarshal(v, &f)
			return f.ClientID == clientID, err
		}); err != nil {
			return err
		}
		return deleteWhere(ownerBucket(tx, ownerID, paymentsBucket), func(v []byte) (bool, error) {
			var p models.Payment
			err := json.Unmarshal(v, &p)
			return p.ClientID == clientID, err
		})
	})
}

func deleteWhere(b *bolt.Bucket, match func([]byte) (bool, error)) error {
	if b == nil {
		return nil
	}
	var keys [][]byte
	err := b.ForEach(func(k, v []byte) error {
		ok, err := match(v)
		if err != nil {
			return err
		}
		if ok {
			keys = append(keys, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// ListFlights returns the owner's flights ordered by date, joined with client names
func (s *Store) ListFlights(ctx context.Context, ownerID string) ([]models.FlightRecord, error) {
	records := []models.FlightRecord{}
	err := s.view(ctx, func(tx *bolt.Tx) error {
		clients := map[string]models.Client{}
		if err := each(ownerBucket(tx, ownerID, clientsBucket), func(c *models.Client) error {
			clients[c.ID] = *c
			return nil
		}); err != nil {
			return err
		}

		return each(ownerBucket(tx, ownerID, flightsBucket), func(f *models.Flight) error {
			f.OwnerID = ownerID
			record := models.FlightRecord{Flight: *f}
			if c, ok := clients[f.ClientID]; ok {
				record.ClientName = c.Name
				record.ClientFreeService = c.IsFreeService
				record.ClientResolved = true
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

func (s *Store) InsertFlight(ctx context.Context, flight *models.Flight) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		b, err := ownerBucketForWrite(tx, flight.OwnerID, flightsBucket)
		if err != nil {
			return fmt.Errorf("failed to insert flight: %w", err)
		}
		return put(b, flight.ID, flight)
	})
}

// ListPayments returns the owner's payments, most recent first
func (s *Store) ListPayments(ctx context.Context, ownerID string) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := s.view(ctx, func(tx *bolt.Tx) error {
		return each(ownerBucket(tx, ownerID, paymentsBucket), func(p *models.Payment) error {
			p.OwnerID = ownerID
			payments = append(payments, *p)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].After(&payments[j])
	})
	return payments, nil
}

func (s *Store) InsertPayment(ctx context.Context, payment *models.Payment) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		b, err := ownerBucketForWrite(tx, payment.OwnerID, paymentsBucket)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
		return put(b, payment.ID, payment)
	})
}
