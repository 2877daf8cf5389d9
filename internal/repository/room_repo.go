package repository

import (
	"cardclash/internal/model"
	"cardclash/internal/store"
	"context"
	"sort"
)

type RoomRepo interface {
	Get(ctx context.Context, id string) (*model.Room, error)
	List(ctx context.Context) ([]*model.Room, error)
	Create(ctx context.Context, room *model.Room) error
	Update(ctx context.Context, id string, fn func(room *model.Room) (*model.Room, error)) (*model.Room, error)
	Delete(ctx context.Context, id string) error
	// WithCreateLock serializes room creation so capacity checks cannot race
	WithCreateLock(ctx context.Context, fn func(ctx context.Context) error) error
}

type roomRepo struct {
	store *store.Store
}

var roomsIndexKey = store.Key{Collection: store.CollectionRooms, ID: "_index"}

func NewRoomRepo(s *store.Store) RoomRepo {
	return &roomRepo{store: s}
}

func (r *roomRepo) key(id string) store.Key {
	return store.Key{Collection: store.CollectionRooms, ID: id}
}

func (r *roomRepo) Get(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	found, err := r.store.Read(ctx, r.key(id), &room)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &room, nil
}

// List returns all rooms, oldest first
func (r *roomRepo) List(ctx context.Context) ([]*model.Room, error) {
	ids, err := r.store.List(ctx, store.CollectionRooms)
	if err != nil {
		return nil, err
	}
	rooms := make([]*model.Room, 0, len(ids))
	for _, id := range ids {
		room, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		// deleted between List and Get
		if room == nil {
			continue
		}
		rooms = append(rooms, room)
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
	return rooms, nil
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	return r.store.Write(ctx, r.key(room.ID), room)
}

// Update passes nil to fn when the room does not exist
func (r *roomRepo) Update(ctx context.Context, id string, fn func(room *model.Room) (*model.Room, error)) (*model.Room, error) {
	return store.Update(ctx, r.store, r.key(id), fn)
}

func (r *roomRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.key(id))
}

func (r *roomRepo) WithCreateLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.WithLock(ctx, roomsIndexKey, fn)
}
