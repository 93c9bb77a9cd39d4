// Package proto holds the subset of the SentencePiece model schema
// (sentencepiece_model.proto) that the converter reads.
//
// Types mirror the shape of protoc-gen-go output for proto2 messages: optional
// scalars are pointers and every getter is nil-safe and returns the declared
// default when a field is absent.
package proto

import "fmt"

// ModelProto_SentencePiece_Type is the piece category.
type ModelProto_SentencePiece_Type int32

const (
	ModelProto_SentencePiece_NORMAL       ModelProto_SentencePiece_Type = 1
	ModelProto_SentencePiece_UNKNOWN      ModelProto_SentencePiece_Type = 2
	ModelProto_SentencePiece_CONTROL      ModelProto_SentencePiece_Type = 3
	ModelProto_SentencePiece_USER_DEFINED ModelProto_SentencePiece_Type = 4
	ModelProto_SentencePiece_UNUSED       ModelProto_SentencePiece_Type = 5
	ModelProto_SentencePiece_BYTE         ModelProto_SentencePiece_Type = 6
)

var pieceTypeNames = map[ModelProto_SentencePiece_Type]string{
	ModelProto_SentencePiece_NORMAL:       "NORMAL",
	ModelProto_SentencePiece_UNKNOWN:      "UNKNOWN",
	ModelProto_SentencePiece_CONTROL:      "CONTROL",
	ModelProto_SentencePiece_USER_DEFINED: "USER_DEFINED",
	ModelProto_SentencePiece_UNUSED:       "UNUSED",
	ModelProto_SentencePiece_BYTE:         "BYTE",
}

func (x ModelProto_SentencePiece_Type) Enum() *ModelProto_SentencePiece_Type {
	p := new(ModelProto_SentencePiece_Type)
	*p = x
	return p
}

func (x ModelProto_SentencePiece_Type) String() string {
	if name, ok := pieceTypeNames[x]; ok {
		return name
	}
	return fmt.Sprintf("ModelProto_SentencePiece_Type(%d)", int32(x))
}

// TrainerSpec_ModelType is the subword algorithm a model was trained with.
type TrainerSpec_ModelType int32

const (
	TrainerSpec_UNIGRAM TrainerSpec_ModelType = 1
	TrainerSpec_BPE     TrainerSpec_ModelType = 2
	TrainerSpec_WORD    TrainerSpec_ModelType = 3
	TrainerSpec_CHAR    TrainerSpec_ModelType = 4
)

var modelTypeNames = map[TrainerSpec_ModelType]string{
	TrainerSpec_UNIGRAM: "UNIGRAM",
	TrainerSpec_BPE:     "BPE",
	TrainerSpec_WORD:    "WORD",
	TrainerSpec_CHAR:    "CHAR",
}

func (x TrainerSpec_ModelType) Enum() *TrainerSpec_ModelType {
	p := new(TrainerSpec_ModelType)
	*p = x
	return p
}

func (x TrainerSpec_ModelType) String() string {
	if name, ok := modelTypeNames[x]; ok {
		return name
	}
	return fmt.Sprintf("TrainerSpec_ModelType(%d)", int32(x))
}

// Default values for proto2 fields.
const (
	Default_ModelProto_SentencePiece_Type         = ModelProto_SentencePiece_NORMAL
	Default_TrainerSpec_ModelType                 = TrainerSpec_UNIGRAM
	Default_TrainerSpec_VocabSize                 = int32(8000)
	Default_TrainerSpec_ByteFallback              = bool(false)
	Default_TrainerSpec_UnkId                     = int32(0)
	Default_TrainerSpec_BosId                     = int32(1)
	Default_TrainerSpec_EosId                     = int32(2)
	Default_TrainerSpec_PadId                     = int32(-1)
	Default_TrainerSpec_UnkPiece                  = string("<unk>")
	Default_TrainerSpec_BosPiece                  = string("<s>")
	Default_TrainerSpec_EosPiece                  = string("</s>")
	Default_TrainerSpec_PadPiece                  = string("<pad>")
	Default_NormalizerSpec_AddDummyPrefix         = bool(true)
	Default_NormalizerSpec_RemoveExtraWhitespaces = bool(true)
	Default_NormalizerSpec_EscapeWhitespaces      = bool(true)
)

// ModelProto is a serialized SentencePiece model.
type ModelProto struct {
	Pieces         []*ModelProto_SentencePiece
	TrainerSpec    *TrainerSpec
	NormalizerSpec *NormalizerSpec
}

func (x *ModelProto) GetPieces() []*ModelProto_SentencePiece {
	if x != nil {
		return x.Pieces
	}
	return nil
}

func (x *ModelProto) GetTrainerSpec() *TrainerSpec {
	if x != nil {
		return x.TrainerSpec
	}
	return nil
}

func (x *ModelProto) GetNormalizerSpec() *NormalizerSpec {
	if x != nil {
		return x.NormalizerSpec
	}
	return nil
}

// ModelProto_SentencePiece is one vocabulary entry.
type ModelProto_SentencePiece struct {
	Piece *string
	Score *float32
	Type  *ModelProto_SentencePiece_Type
}

func (x *ModelProto_SentencePiece) GetPiece() string {
	if x != nil && x.Piece != nil {
		return *x.Piece
	}
	return ""
}

func (x *ModelProto_SentencePiece) GetScore() float32 {
	if x != nil && x.Score != nil {
		return *x.Score
	}
	return 0
}

func (x *ModelProto_SentencePiece) GetType() ModelProto_SentencePiece_Type {
	if x != nil && x.Type != nil {
		return *x.Type
	}
	return Default_ModelProto_SentencePiece_Type
}

// TrainerSpec carries the training configuration stored with the model.
type TrainerSpec struct {
	ModelType    *TrainerSpec_ModelType
	VocabSize    *int32
	ByteFallback *bool
	UnkId        *int32
	BosId        *int32
	EosId        *int32
	PadId        *int32
	UnkPiece     *string
	BosPiece     *string
	EosPiece     *string
	PadPiece     *string
}

func (x *TrainerSpec) GetModelType() TrainerSpec_ModelType {
	if x != nil && x.ModelType != nil {
		return *x.ModelType
	}
	return Default_TrainerSpec_ModelType
}

func (x *TrainerSpec) GetVocabSize() int32 {
	if x != nil && x.VocabSize != nil {
		return *x.VocabSize
	}
	return Default_TrainerSpec_VocabSize
}

func (x *TrainerSpec) GetByteFallback() bool {
	if x != nil && x.ByteFallback != nil {
		return *x.ByteFallback
	}
	return Default_TrainerSpec_ByteFallback
}

func (x *TrainerSpec) GetUnkId() int32 {
	if x != nil && x.UnkId != nil {
		return *x.UnkId
	}
	return Default_TrainerSpec_UnkId
}

func (x *TrainerSpec) GetBosId() int32 {
	if x != nil && x.BosId != nil {
		return *x.BosId
	}
	return Default_TrainerSpec_BosId
}

func (x *TrainerSpec) GetEosId() int32 {
	if x != nil && x.EosId != nil {
		return *x.EosId
	}
	return Default_TrainerSpec_EosId
}

func (x *TrainerSpec) GetPadId() int32 {
	if x != nil && x.PadId != nil {
		return *x.PadId
	}
	return Default_TrainerSpec_PadId
}

func (x *TrainerSpec) GetUnkPiece() string {
	if x != nil && x.UnkPiece != nil {
		return *x.UnkPiece
	}
	return Default_TrainerSpec_UnkPiece
}

func (x *TrainerSpec) GetBosPiece() string {
	if x != nil && x.BosPiece != nil {
		return *x.BosPiece
	}
	return Default_TrainerSpec_BosPiece
}

func (x *TrainerSpec) GetEosPiece() string {
	if x != nil && x.EosPiece != nil {
		return *x.EosPiece
	}
	return Default_TrainerSpec_EosPiece
}

func (x *TrainerSpec) GetPadPiece() string {
	if x != nil && x.PadPiece != nil {
		return *x.PadPiece
	}
	return Default_TrainerSpec_PadPiece
}

// NormalizerSpec describes text normalization applied before segmentation.
type NormalizerSpec struct {
	Name                   *string
	PrecompiledCharsmap    []byte
	AddDummyPrefix         *bool
	RemoveExtraWhitespaces *bool
	EscapeWhitespaces      *bool
}

func (x *NormalizerSpec) GetName() string {
	if x != nil && x.Name != nil {
		return *x.Name
	}
	return ""
}

func (x *NormalizerSpec) GetPrecompiledCharsmap() []byte {
	if x != nil {
		return x.PrecompiledCharsmap
	}
	return nil
}

func (x *NormalizerSpec) GetAddDummyPrefix() bool {
	if x != nil && x.AddDummyPrefix != nil {
		return *x.AddDummyPrefix
	}
	return Default_NormalizerSpec_AddDummyPrefix
}

func (x *NormalizerSpec) GetRemoveExtraWhitespaces() bool {
	if x != nil && x.RemoveExtraWhitespaces != nil {
		return *x.RemoveExtraWhitespaces
	}
	return Default_NormalizerSpec_RemoveExtraWhitespaces
}

func (x *NormalizerSpec) GetEscapeWhitespaces() bool {
	if x != nil && x.EscapeWhitespaces != nil {
		return *x.EscapeWhitespaces
	}
	return Default_NormalizerSpec_EscapeWhitespaces
}
