package tokenizer

import (
	"fmt"
	"os"

	pb "github.com/jamesainslie/go-spmconv/internal/proto"
)

// Piece represents a vocabulary piece from the model.
type Piece struct {
	Piece string
	Score float32
	Type  pb.ModelProto_SentencePiece_Type
}

// Model represents a loaded SentencePiece model.
type Model struct {
	Pieces         []Piece
	TrainerSpec    *pb.TrainerSpec
	NormalizerSpec *pb.NormalizerSpec
}

// LoadModel loads a SentencePiece model from a .model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	return ParseModel(data)
}

// ParseModel decodes a serialized SentencePiece ModelProto.
func ParseModel(data []byte) (*Model, error) {
	modelProto, err := pb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing protobuf: %w", err)
	}

	pieces := make([]Piece, len(modelProto.Pieces))
	for i, p := range modelProto.Pieces {
		pieces[i] = Piece{
			Piece: p.GetPiece(),
			Score: p.GetScore(),
			Type:  p.GetType(),
		}
	}

	return &Model{
		Pieces:         pieces,
		TrainerSpec:    modelProto.TrainerSpec,
		NormalizerSpec: modelProto.NormalizerSpec,
	}, nil
}

// ModelType returns the subword algorithm the model was trained with.
func (m *Model) ModelType() pb.TrainerSpec_ModelType {
	return m.TrainerSpec.GetModelType()
}

// ByteFallback reports whether the model decomposes unknown text into byte pieces.
func (m *Model) ByteFallback() bool {
	return m.TrainerSpec.GetByteFallback()
}

// UnkID returns the id of the unknown piece.
func (m *Model) UnkID() int {
	return int(m.TrainerSpec.GetUnkId())
}

// UnkPiece returns the surface form of the unknown piece.
func (m *Model) UnkPiece() string {
	return m.TrainerSpec.GetUnkPiece()
}

// PrecompiledCharsmap returns the normalization table, or nil if the model has none.
func (m *Model) PrecompiledCharsmap() []byte {
	return m.NormalizerSpec.GetPrecompiledCharsmap()
}

// Proto converts the model back to its wire representation.
func (m *Model) Proto() *pb.ModelProto {
	out := &pb.ModelProto{
		Pieces:         make([]*pb.ModelProto_SentencePiece, len(m.Pieces)),
		TrainerSpec:    m.TrainerSpec,
		NormalizerSpec: m.NormalizerSpec,
	}
	for i, p := range m.Pieces {
		piece, score := p.Piece, p.Score
		sp := &pb.ModelProto_SentencePiece{Piece: &piece, Score: &score}
		if p.Type != 0 && p.Type != pb.Default_ModelProto_SentencePiece_Type {
			sp.Type = p.Type.Enum()
		}
		out.Pieces[i] = sp
	}
	return out
}

// WriteModel serializes m to path.
func WriteModel(path string, m *Model) error {
	data, err := pb.Marshal(m.Proto())
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	return nil
}
