package engine

import (
	"testing"
	"time"

	"github.com/DeathRay00/trackmint/internal/mfg/entity"
)

var allWOStatuses = []entity.WorkOrderStatus{
	entity.WOStatusReady, entity.WOStatusStarted, entity.WOStatusPaused,
	entity.WOStatusCompleted, entity.WOStatusCanceled,
}

func TestTransitionTableIsExhaustive(t *testing.T) {
	legal := map[[2]entity.WorkOrderStatus]bool{
		{entity.WOStatusReady, entity.WOStatusStarted}:     true,
		{entity.WOStatusReady, entity.WOStatusCanceled}:    true,
		{entity.WOStatusStarted, entity.WOStatusPaused}:    true,
		{entity.WOStatusStarted, entity.WOStatusCompleted}: true,
		{entity.WOStatusStarted, entity.WOStatusCanceled}:  true,
		{entity.WOStatusPaused, entity.WOStatusStarted}:    true,
		{entity.WOStatusPaused, entity.WOStatusCanceled}:   true,
	}

	for _, from := range allWOStatuses {
		for _, to := range allWOStatuses {
			want := legal[[2]entity.WorkOrderStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestNoTransitionOutOfTerminalStates(t *testing.T) {
	for _, from := range []entity.WorkOrderStatus{entity.WOStatusCompleted, entity.WOStatusCanceled} {
		if !IsTerminal(from) {
			t.Errorf("%s should be terminal", from)
		}
		for _, to := range allWOStatuses {
			if err := Transition(from, to); !IsCode(err, CodeInvalidStatusTransition) {
				t.Errorf("Transition(%s, %s) should fail, got %v", from, to, err)
			}
		}
	}
}

func TestTransitionErrorDetails(t *testing.T) {
	err := Transition(entity.WOStatusStarted, entity.WOStatusReady)
	be, ok := AsError(err)
	if !ok || be.Code != CodeInvalidStatusTransition {
		t.Fatalf("Expected INVALID_STATUS_TRANSITION, got %v", err)
	}
	if be.Details["current_status"] != "Started" || be.Details["new_status"] != "Ready" {
		t.Errorf("Expected Started->Ready in details, got %v", be.Details)
	}
}

func TestAllSiblingsCompleted(t *testing.T) {
	wo := func(s entity.WorkOrderStatus) entity.WorkOrder {
		return entity.WorkOrder{Status: s}
	}

	if !AllSiblingsCompleted([]entity.WorkOrder{wo(entity.WOStatusCompleted), wo(entity.WOStatusCompleted)}) {
		t.Error("All completed siblings should cascade")
	}
	if AllSiblingsCompleted([]entity.WorkOrder{wo(entity.WOStatusCompleted), wo(entity.WOStatusStarted)}) {
		t.Error("A pending sibling must block the cascade")
	}
	if AllSiblingsCompleted([]entity.WorkOrder{wo(entity.WOStatusCompleted), wo(entity.WOStatusCanceled)}) {
		t.Error("A canceled sibling is not completed")
	}
}

func TestAllSiblingsCompletedIgnoresRetired(t *testing.T) {
	pending := entity.WorkOrder{Status: entity.WOStatusReady}
	pending.Retire(time.Now(), "tester")

	siblings := []entity.WorkOrder{
		{Status: entity.WOStatusCompleted},
		pending,
	}
	if !AllSiblingsCompleted(siblings) {
		t.Error("Retired siblings must not block the cascade")
	}
}
