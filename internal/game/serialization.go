package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Checksum computes a deterministic SHA-256 digest of the duel state.
// Checksums guard against divergent states across reconnects and replays:
// two states with the same digest are interchangeable.
func Checksum(state *GameState) string {
	hash := sha256.Sum256([]byte(buildDeterministicRepresentation(state)))
	return hex.EncodeToString(hash[:])
}

// buildDeterministicRepresentation renders the state as a canonical string
// independent of map iteration order.
func buildDeterministicRepresentation(state *GameState) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%d|%s|%d|%s|%s|%d|%s|%s\n",
		state.Version,
		state.Status,
		state.Seed,
		state.FirstPlayerID,
		state.Turn.PlayerID,
		state.Turn.TurnNumber,
		state.Turn.Phase,
		state.WinnerID,
	)

	if pending := state.PendingAttack; pending != nil {
		fmt.Fprintf(&buf, "PENDING:%s|%d|%t|%d|%t|%s\n",
			pending.AttackerPlayerID,
			pending.AttackerSlot,
			pending.Target.Direct,
			pending.Target.Slot,
			pending.DefenderMayRespond,
			pending.Window,
		)
	}

	for _, player := range state.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%d|%t|%d\n",
			player.ID,
			player.LP,
			player.UsedSummonOrFuseThisTurn,
			player.CannotAttackUntilTurn,
		)
		// Deck and hand orders are gameplay-relevant, so they stay unsorted.
		fmt.Fprintf(&buf, "  DECK:%s\n", strings.Join(player.Deck, ","))
		fmt.Fprintf(&buf, "  HAND:%s\n", strings.Join(player.Hand, ","))

		graveyard := append([]string(nil), player.Graveyard...)
		sort.Strings(graveyard)
		fmt.Fprintf(&buf, "  GRAVEYARD:%s\n", strings.Join(graveyard, ","))

		for slot, monster := range player.MonsterZone {
			if monster == nil {
				continue
			}
			fmt.Fprintf(&buf, "  MONSTER:%d|%s|%s|%s|%s|%d|%d|%t|%t|%t|%d\n",
				slot,
				monster.InstanceID,
				monster.TemplateID,
				monster.Face,
				monster.Position,
				monster.AtkModifier,
				monster.DefModifier,
				monster.HasAttackedThisTurn,
				monster.PositionChangedThisTurn,
				monster.CannotAttackThisTurn,
				monster.LockedPositionUntilTurn,
			)
		}
		for slot, card := range player.SpellTrapZone {
			if card == nil {
				continue
			}
			fmt.Fprintf(&buf, "  SPELLTRAP:%d|%s|%s|%s|%s|%t|%t|%s|%d|%d\n",
				slot,
				card.InstanceID,
				card.TemplateID,
				card.Kind,
				card.Face,
				card.SetThisTurn,
				card.Continuous,
				card.EquipTargetInstanceID,
				card.EquipAtkBoost,
				card.EquipDefBoost,
			)
		}
	}

	instanceIDs := make([]string, 0, len(state.Instances))
	for id := range state.Instances {
		instanceIDs = append(instanceIDs, id)
	}
	sort.Strings(instanceIDs)
	for _, id := range instanceIDs {
		instance := state.Instances[id]
		fmt.Fprintf(&buf, "INSTANCE:%s|%s|%s\n", id, instance.TemplateID, instance.OwnerID)
	}

	return buf.String()
}

// The wire form stores board zones as occupied-slot lists because gob
// refuses nil elements inside fixed-size arrays, and most board slots are
// empty in any real duel.
type wireMonster struct {
	Slot int
	Card MonsterOnBoard
}

type wireSpellTrap struct {
	Slot int
	Card SpellTrapOnBoard
}

type wirePlayer struct {
	ID        string
	Username  string
	LP        int
	Deck      []string
	Hand      []string
	Graveyard []string

	Monsters   []wireMonster
	SpellTraps []wireSpellTrap

	UsedSummonOrFuseThisTurn bool
	CannotAttackUntilTurn    int
}

type wireState struct {
	Version       int
	Status        Status
	Seed          int64
	FirstPlayerID string
	Config        MatchConfig
	Turn          TurnState
	PendingAttack *PendingAttack
	Players       [2]wirePlayer
	Instances     map[string]CardInstance
	WinnerID      string
}

func toWireState(state *GameState) *wireState {
	wire := &wireState{
		Version:       state.Version,
		Status:        state.Status,
		Seed:          state.Seed,
		FirstPlayerID: state.FirstPlayerID,
		Config:        state.Config,
		Turn:          state.Turn,
		PendingAttack: state.PendingAttack,
		WinnerID:      state.WinnerID,
		Instances:     make(map[string]CardInstance, len(state.Instances)),
	}
	for id, instance := range state.Instances {
		wire.Instances[id] = *instance
	}
	for i, player := range state.Players {
		wp := wirePlayer{
			ID:                       player.ID,
			Username:                 player.Username,
			LP:                       player.LP,
			Deck:                     player.Deck,
			Hand:                     player.Hand,
			Graveyard:                player.Graveyard,
			UsedSummonOrFuseThisTurn: player.UsedSummonOrFuseThisTurn,
			CannotAttackUntilTurn:    player.CannotAttackUntilTurn,
		}
		for slot, monster := range player.MonsterZone {
			if monster != nil {
				wp.Monsters = append(wp.Monsters, wireMonster{Slot: slot, Card: *monster})
			}
		}
		for slot, card := range player.SpellTrapZone {
			if card != nil {
				wp.SpellTraps = append(wp.SpellTraps, wireSpellTrap{Slot: slot, Card: *card})
			}
		}
		wire.Players[i] = wp
	}
	return wire
}

func fromWireState(wire *wireState) *GameState {
	state := &GameState{
		Version:       wire.Version,
		Status:        wire.Status,
		Seed:          wire.Seed,
		FirstPlayerID: wire.FirstPlayerID,
		Config:        wire.Config,
		Turn:          wire.Turn,
		PendingAttack: wire.PendingAttack,
		WinnerID:      wire.WinnerID,
		Instances:     make(map[string]*CardInstance, len(wire.Instances)),
	}
	for id, instance := range wire.Instances {
		inst := instance
		state.Instances[id] = &inst
	}
	for i, wp := range wire.Players {
		player := &PlayerState{
			ID:                       wp.ID,
			Username:                 wp.Username,
			LP:                       wp.LP,
			Deck:                     wp.Deck,
			Hand:                     wp.Hand,
			Graveyard:                wp.Graveyard,
			UsedSummonOrFuseThisTurn: wp.UsedSummonOrFuseThisTurn,
			CannotAttackUntilTurn:    wp.CannotAttackUntilTurn,
		}
		for _, monster := range wp.Monsters {
			m := monster.Card
			player.MonsterZone[monster.Slot] = &m
		}
		for _, card := range wp.SpellTraps {
			c := card.Card
			player.SpellTrapZone[card.Slot] = &c
		}
		state.Players[i] = player
	}
	return state
}

// SerializeState encodes the state with gob for replay files and room
// persistence.
func SerializeState(state *GameState) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toWireState(state)); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeState decodes a gob-encoded state.
func DeserializeState(data []byte) (*GameState, error) {
	var wire wireState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return fromWireState(&wire), nil
}

// ValidateSerializationRoundtrip checks that a state survives encoding
// without drift by comparing checksums.
func ValidateSerializationRoundtrip(state *GameState) error {
	before := Checksum(state)
	data, err := SerializeState(state)
	if err != nil {
		return err
	}
	decoded, err := DeserializeState(data)
	if err != nil {
		return err
	}
	if after := Checksum(decoded); after != before {
		return fmt.Errorf("checksum mismatch after roundtrip: %s != %s", before, after)
	}
	return nil
}
