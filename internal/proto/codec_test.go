package proto

import (
	"bytes"
	"testing"

	gproto "google.golang.org/protobuf/proto"
)

func TestMarshalUnmarshal(t *testing.T) {
	in := &ModelProto{
		Pieces: []*ModelProto_SentencePiece{
			{Piece: gproto.String("<unk>"), Score: gproto.Float32(0), Type: ModelProto_SentencePiece_UNKNOWN.Enum()},
			{Piece: gproto.String("▁the"), Score: gproto.Float32(-3.5)},
		},
		TrainerSpec: &TrainerSpec{
			ModelType:    TrainerSpec_BPE.Enum(),
			ByteFallback: gproto.Bool(true),
			UnkId:        gproto.Int32(0),
		},
		NormalizerSpec: &NormalizerSpec{
			Name:                gproto.String("nmt_nfkc"),
			PrecompiledCharsmap: []byte{0x01, 0x02, 0x03},
		},
	}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(out.GetPieces()) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(out.GetPieces()))
	}
	if got := out.Pieces[1].GetPiece(); got != "▁the" {
		t.Errorf("piece[1] = %q, want %q", got, "▁the")
	}
	if got := out.Pieces[1].GetScore(); got != -3.5 {
		t.Errorf("score[1] = %v, want -3.5", got)
	}
	if got := out.Pieces[0].GetType(); got != ModelProto_SentencePiece_UNKNOWN {
		t.Errorf("type[0] = %v, want UNKNOWN", got)
	}
	if got := out.Pieces[1].GetType(); got != ModelProto_SentencePiece_NORMAL {
		t.Errorf("type[1] = %v, want NORMAL default", got)
	}
	if got := out.GetTrainerSpec().GetModelType(); got != TrainerSpec_BPE {
		t.Errorf("model type = %v, want BPE", got)
	}
	if !out.GetTrainerSpec().GetByteFallback() {
		t.Error("expected byte_fallback to survive round trip")
	}
	if got := out.GetNormalizerSpec().GetName(); got != "nmt_nfkc" {
		t.Errorf("normalizer name = %q", got)
	}
	if !bytes.Equal(out.GetNormalizerSpec().GetPrecompiledCharsmap(), []byte{0x01, 0x02, 0x03}) {
		t.Errorf("charsmap = %v", out.GetNormalizerSpec().GetPrecompiledCharsmap())
	}
}

func TestDefaults(t *testing.T) {
	out, err := Unmarshal(nil)
	if err != nil {
		t.Fatalf("Unmarshal(nil) failed: %v", err)
	}

	if out.GetTrainerSpec() != nil {
		t.Error("expected nil trainer spec for empty record")
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"model type", out.GetTrainerSpec().GetModelType(), TrainerSpec_UNIGRAM},
		{"unk id", out.GetTrainerSpec().GetUnkId(), int32(0)},
		{"unk piece", out.GetTrainerSpec().GetUnkPiece(), "<unk>"},
		{"pad id", out.GetTrainerSpec().GetPadId(), int32(-1)},
		{"byte fallback", out.GetTrainerSpec().GetByteFallback(), false},
		{"add dummy prefix", out.GetNormalizerSpec().GetAddDummyPrefix(), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestUnmarshal_InvalidData(t *testing.T) {
	// Truncated varint tag.
	if _, err := Unmarshal([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestModelTypeString(t *testing.T) {
	if TrainerSpec_BPE.String() != "BPE" {
		t.Errorf("BPE.String() = %q", TrainerSpec_BPE.String())
	}
	if got := TrainerSpec_ModelType(9).String(); got != "TrainerSpec_ModelType(9)" {
		t.Errorf("unknown String() = %q", got)
	}
}
