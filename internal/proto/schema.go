package proto

import (
	"fmt"
	"sync"

	gproto "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Field numbers follow sentencepiece_model.proto. Fields outside this subset
// survive decoding as unknown fields and are never read.
const (
	fieldModelPieces         = 1
	fieldModelTrainerSpec    = 2
	fieldModelNormalizerSpec = 3

	fieldPiecePiece = 1
	fieldPieceScore = 2
	fieldPieceType  = 3

	fieldTrainerModelType    = 3
	fieldTrainerVocabSize    = 4
	fieldTrainerByteFallback = 35
	fieldTrainerUnkID        = 40
	fieldTrainerBosID        = 41
	fieldTrainerEosID        = 42
	fieldTrainerPadID        = 43
	fieldTrainerUnkPiece     = 45
	fieldTrainerBosPiece     = 46
	fieldTrainerEosPiece     = 47
	fieldTrainerPadPiece     = 48

	fieldNormalizerName                   = 1
	fieldNormalizerPrecompiledCharsmap    = 2
	fieldNormalizerAddDummyPrefix         = 3
	fieldNormalizerRemoveExtraWhitespaces = 4
	fieldNormalizerEscapeWhitespaces      = 5
)

type schema struct {
	model      protoreflect.MessageDescriptor
	piece      protoreflect.MessageDescriptor
	trainer    protoreflect.MessageDescriptor
	normalizer protoreflect.MessageDescriptor
}

var loadSchema = sync.OnceValues(func() (*schema, error) {
	fd, err := protodesc.NewFile(fileDescriptor(), nil)
	if err != nil {
		return nil, fmt.Errorf("building sentencepiece descriptor: %w", err)
	}

	model := fd.Messages().ByName("ModelProto")
	return &schema{
		model:      model,
		piece:      model.Messages().ByName("SentencePiece"),
		trainer:    fd.Messages().ByName("TrainerSpec"),
		normalizer: fd.Messages().ByName("NormalizerSpec"),
	}, nil
})

var (
	labelOptional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	labelRepeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED

	typeString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	typeBytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	typeFloat   = descriptorpb.FieldDescriptorProto_TYPE_FLOAT
	typeInt32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
	typeBool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	typeEnum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM
	typeMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
)

func field(name string, number int32, label descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   gproto.String(name),
		Number: gproto.Int32(number),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
}

func withDefault(f *descriptorpb.FieldDescriptorProto, def string) *descriptorpb.FieldDescriptorProto {
	f.DefaultValue = gproto.String(def)
	return f
}

func withType(f *descriptorpb.FieldDescriptorProto, typeName string) *descriptorpb.FieldDescriptorProto {
	f.TypeName = gproto.String(typeName)
	return f
}

func enumValue(name string, number int32) *descriptorpb.EnumValueDescriptorProto {
	return &descriptorpb.EnumValueDescriptorProto{
		Name:   gproto.String(name),
		Number: gproto.Int32(number),
	}
}

func fileDescriptor() *descriptorpb.FileDescriptorProto {
	pieceType := &descriptorpb.EnumDescriptorProto{
		Name: gproto.String("Type"),
		Value: []*descriptorpb.EnumValueDescriptorProto{
			enumValue("NORMAL", 1),
			enumValue("UNKNOWN", 2),
			enumValue("CONTROL", 3),
			enumValue("USER_DEFINED", 4),
			enumValue("BYTE", 6),
			enumValue("UNUSED", 5),
		},
	}

	piece := &descriptorpb.DescriptorProto{
		Name: gproto.String("SentencePiece"),
		Field: []*descriptorpb.FieldDescriptorProto{
			field("piece", fieldPiecePiece, labelOptional, typeString),
			field("score", fieldPieceScore, labelOptional, typeFloat),
			withDefault(withType(field("type", fieldPieceType, labelOptional, typeEnum),
				".sentencepiece.ModelProto.SentencePiece.Type"), "NORMAL"),
		},
		EnumType: []*descriptorpb.EnumDescriptorProto{pieceType},
	}

	model := &descriptorpb.DescriptorProto{
		Name: gproto.String("ModelProto"),
		Field: []*descriptorpb.FieldDescriptorProto{
			withType(field("pieces", fieldModelPieces, labelRepeated, typeMessage),
				".sentencepiece.ModelProto.SentencePiece"),
			withType(field("trainer_spec", fieldModelTrainerSpec, labelOptional, typeMessage),
				".sentencepiece.TrainerSpec"),
			withType(field("normalizer_spec", fieldModelNormalizerSpec, labelOptional, typeMessage),
				".sentencepiece.NormalizerSpec"),
		},
		NestedType: []*descriptorpb.DescriptorProto{piece},
	}

	modelType := &descriptorpb.EnumDescriptorProto{
		Name: gproto.String("ModelType"),
		Value: []*descriptorpb.EnumValueDescriptorProto{
			enumValue("UNIGRAM", 1),
			enumValue("BPE", 2),
			enumValue("WORD", 3),
			enumValue("CHAR", 4),
		},
	}

	trainer := &descriptorpb.DescriptorProto{
		Name: gproto.String("TrainerSpec"),
		Field: []*descriptorpb.FieldDescriptorProto{
			withDefault(withType(field("model_type", fieldTrainerModelType, labelOptional, typeEnum),
				".sentencepiece.TrainerSpec.ModelType"), "UNIGRAM"),
			withDefault(field("vocab_size", fieldTrainerVocabSize, labelOptional, typeInt32), "8000"),
			withDefault(field("byte_fallback", fieldTrainerByteFallback, labelOptional, typeBool), "false"),
			withDefault(field("unk_id", fieldTrainerUnkID, labelOptional, typeInt32), "0"),
			withDefault(field("bos_id", fieldTrainerBosID, labelOptional, typeInt32), "1"),
			withDefault(field("eos_id", fieldTrainerEosID, labelOptional, typeInt32), "2"),
			withDefault(field("pad_id", fieldTrainerPadID, labelOptional, typeInt32), "-1"),
			withDefault(field("unk_piece", fieldTrainerUnkPiece, labelOptional, typeString), "<unk>"),
			withDefault(field("bos_piece", fieldTrainerBosPiece, labelOptional, typeString), "<s>"),
			withDefault(field("eos_piece", fieldTrainerEosPiece, labelOptional, typeString), "</s>"),
			withDefault(field("pad_piece", fieldTrainerPadPiece, labelOptional, typeString), "<pad>"),
		},
		EnumType: []*descriptorpb.EnumDescriptorProto{modelType},
	}

	normalizer := &descriptorpb.DescriptorProto{
		Name: gproto.String("NormalizerSpec"),
		Field: []*descriptorpb.FieldDescriptorProto{
			field("name", fieldNormalizerName, labelOptional, typeString),
			field("precompiled_charsmap", fieldNormalizerPrecompiledCharsmap, labelOptional, typeBytes),
			withDefault(field("add_dummy_prefix", fieldNormalizerAddDummyPrefix, labelOptional, typeBool), "true"),
			withDefault(field("remove_extra_whitespaces", fieldNormalizerRemoveExtraWhitespaces, labelOptional, typeBool), "true"),
			withDefault(field("escape_whitespaces", fieldNormalizerEscapeWhitespaces, labelOptional, typeBool), "true"),
		},
	}

	return &descriptorpb.FileDescriptorProto{
		Name:        gproto.String("sentencepiece_model.proto"),
		Package:     gproto.String("sentencepiece"),
		Syntax:      gproto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{trainer, normalizer, model},
	}
}
