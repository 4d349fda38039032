package mock

import (
	"context"
	"sync"
	"testing"

	"github.com/kozaktomas/lab-kiosk/internal/database"
)

func TestStore_ListsAreSortedAndSplit(t *testing.T) {
	s := NewStore()
	s.AddUser(database.EnrolledUser{UserID: "S2", Embedding: []float32{1}})
	s.AddUser(database.EnrolledUser{UserID: "S1", Embedding: []float32{1}})
	s.AddUser(database.EnrolledUser{UserID: "S3", PhotoPath: "s3.jpg"})
	s.AddUser(database.EnrolledUser{UserID: "S4"})

	ctx := context.Background()
	enrolled, _ := s.ListEnrolledWithEmbedding(ctx)
	if len(enrolled) != 2 || enrolled[0].UserID != "S1" || enrolled[1].UserID != "S2" {
		t.Errorf("unexpected enrolled users: %+v", enrolled)
	}

	missing, _ := s.ListMissingEmbeddings(ctx)
	if len(missing) != 1 || missing[0].UserID != "S3" {
		t.Errorf("unexpected missing users: %+v", missing)
	}
}

func TestStore_MarkCheckedOnce(t *testing.T) {
	s := NewStore()
	s.AddReservation(database.Reservation{ReservationID: "R1", Verified: true})

	var wg sync.WaitGroup
	results := make(chan bool, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := s.MarkChecked(context.Background(), "R1")
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	consumed := 0
	for ok := range results {
		if ok {
			consumed++
		}
	}
	if consumed != 1 {
		t.Errorf("expected exactly one consume, got %d", consumed)
	}
	if s.MarkedCalls() != 1 {
		t.Errorf("expected 1 marked call, got %d", s.MarkedCalls())
	}
}
