package proto

import (
	"fmt"

	gproto "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Unmarshal decodes a binary ModelProto.
func Unmarshal(data []byte) (*ModelProto, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}

	msg := dynamicpb.NewMessage(s.model)
	if err := gproto.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("unmarshal ModelProto: %w", err)
	}

	return s.decodeModel(msg), nil
}

// Marshal encodes m deterministically.
func Marshal(m *ModelProto) ([]byte, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}

	msg := s.encodeModel(m)
	return gproto.MarshalOptions{Deterministic: true}.Marshal(msg)
}

func (s *schema) decodeModel(msg protoreflect.Message) *ModelProto {
	fields := s.model.Fields()
	out := &ModelProto{}

	list := msg.Get(fields.ByNumber(fieldModelPieces)).List()
	if list.Len() > 0 {
		out.Pieces = make([]*ModelProto_SentencePiece, list.Len())
		for i := 0; i < list.Len(); i++ {
			out.Pieces[i] = s.decodePiece(list.Get(i).Message())
		}
	}

	if fd := fields.ByNumber(fieldModelTrainerSpec); msg.Has(fd) {
		out.TrainerSpec = s.decodeTrainer(msg.Get(fd).Message())
	}
	if fd := fields.ByNumber(fieldModelNormalizerSpec); msg.Has(fd) {
		out.NormalizerSpec = s.decodeNormalizer(msg.Get(fd).Message())
	}

	return out
}

func (s *schema) decodePiece(msg protoreflect.Message) *ModelProto_SentencePiece {
	fields := s.piece.Fields()
	p := &ModelProto_SentencePiece{
		Piece: getString(msg, fields.ByNumber(fieldPiecePiece)),
		Score: getFloat32(msg, fields.ByNumber(fieldPieceScore)),
	}
	if fd := fields.ByNumber(fieldPieceType); msg.Has(fd) {
		p.Type = ModelProto_SentencePiece_Type(msg.Get(fd).Enum()).Enum()
	}
	return p
}

func (s *schema) decodeTrainer(msg protoreflect.Message) *TrainerSpec {
	fields := s.trainer.Fields()
	t := &TrainerSpec{
		VocabSize:    getInt32(msg, fields.ByNumber(fieldTrainerVocabSize)),
		ByteFallback: getBool(msg, fields.ByNumber(fieldTrainerByteFallback)),
		UnkId:        getInt32(msg, fields.ByNumber(fieldTrainerUnkID)),
		BosId:        getInt32(msg, fields.ByNumber(fieldTrainerBosID)),
		EosId:        getInt32(msg, fields.ByNumber(fieldTrainerEosID)),
		PadId:        getInt32(msg, fields.ByNumber(fieldTrainerPadID)),
		UnkPiece:     getString(msg, fields.ByNumber(fieldTrainerUnkPiece)),
		BosPiece:     getString(msg, fields.ByNumber(fieldTrainerBosPiece)),
		EosPiece:     getString(msg, fields.ByNumber(fieldTrainerEosPiece)),
		PadPiece:     getString(msg, fields.ByNumber(fieldTrainerPadPiece)),
	}
	if fd := fields.ByNumber(fieldTrainerModelType); msg.Has(fd) {
		t.ModelType = TrainerSpec_ModelType(msg.Get(fd).Enum()).Enum()
	}
	return t
}

func (s *schema) decodeNormalizer(msg protoreflect.Message) *NormalizerSpec {
	fields := s.normalizer.Fields()
	n := &NormalizerSpec{
		Name:                   getString(msg, fields.ByNumber(fieldNormalizerName)),
		AddDummyPrefix:         getBool(msg, fields.ByNumber(fieldNormalizerAddDummyPrefix)),
		RemoveExtraWhitespaces: getBool(msg, fields.ByNumber(fieldNormalizerRemoveExtraWhitespaces)),
		EscapeWhitespaces:      getBool(msg, fields.ByNumber(fieldNormalizerEscapeWhitespaces)),
	}
	if fd := fields.ByNumber(fieldNormalizerPrecompiledCharsmap); msg.Has(fd) {
		n.PrecompiledCharsmap = append([]byte(nil), msg.Get(fd).Bytes()...)
	}
	return n
}

func (s *schema) encodeModel(m *ModelProto) *dynamicpb.Message {
	fields := s.model.Fields()
	msg := dynamicpb.NewMessage(s.model)

	if pieces := m.GetPieces(); len(pieces) > 0 {
		list := msg.Mutable(fields.ByNumber(fieldModelPieces)).List()
		for _, p := range pieces {
			list.Append(protoreflect.ValueOfMessage(s.encodePiece(p)))
		}
	}
	if t := m.GetTrainerSpec(); t != nil {
		msg.Set(fields.ByNumber(fieldModelTrainerSpec), protoreflect.ValueOfMessage(s.encodeTrainer(t)))
	}
	if n := m.GetNormalizerSpec(); n != nil {
		msg.Set(fields.ByNumber(fieldModelNormalizerSpec), protoreflect.ValueOfMessage(s.encodeNormalizer(n)))
	}

	return msg
}

func (s *schema) encodePiece(p *ModelProto_SentencePiece) *dynamicpb.Message {
	fields := s.piece.Fields()
	msg := dynamicpb.NewMessage(s.piece)
	if p == nil {
		return msg
	}
	if p.Piece != nil {
		msg.Set(fields.ByNumber(fieldPiecePiece), protoreflect.ValueOfString(*p.Piece))
	}
	if p.Score != nil {
		msg.Set(fields.ByNumber(fieldPieceScore), protoreflect.ValueOfFloat32(*p.Score))
	}
	if p.Type != nil {
		msg.Set(fields.ByNumber(fieldPieceType), protoreflect.ValueOfEnum(protoreflect.EnumNumber(*p.Type)))
	}
	return msg
}

func (s *schema) encodeTrainer(t *TrainerSpec) *dynamicpb.Message {
	fields := s.trainer.Fields()
	msg := dynamicpb.NewMessage(s.trainer)

	if t.ModelType != nil {
		msg.Set(fields.ByNumber(fieldTrainerModelType), protoreflect.ValueOfEnum(protoreflect.EnumNumber(*t.ModelType)))
	}
	setInt32(msg, fields.ByNumber(fieldTrainerVocabSize), t.VocabSize)
	setBool(msg, fields.ByNumber(fieldTrainerByteFallback), t.ByteFallback)
	setInt32(msg, fields.ByNumber(fieldTrainerUnkID), t.UnkId)
	setInt32(msg, fields.ByNumber(fieldTrainerBosID), t.BosId)
	setInt32(msg, fields.ByNumber(fieldTrainerEosID), t.EosId)
	setInt32(msg, fields.ByNumber(fieldTrainerPadID), t.PadId)
	setString(msg, fields.ByNumber(fieldTrainerUnkPiece), t.UnkPiece)
	setString(msg, fields.ByNumber(fieldTrainerBosPiece), t.BosPiece)
	setString(msg, fields.ByNumber(fieldTrainerEosPiece), t.EosPiece)
	setString(msg, fields.ByNumber(fieldTrainerPadPiece), t.PadPiece)

	return msg
}

func (s *schema) encodeNormalizer(n *NormalizerSpec) *dynamicpb.Message {
	fields := s.normalizer.Fields()
	msg := dynamicpb.NewMessage(s.normalizer)

	setString(msg, fields.ByNumber(fieldNormalizerName), n.Name)
	if n.PrecompiledCharsmap != nil {
		msg.Set(fields.ByNumber(fieldNormalizerPrecompiledCharsmap), protoreflect.ValueOfBytes(n.PrecompiledCharsmap))
	}
	setBool(msg, fields.ByNumber(fieldNormalizerAddDummyPrefix), n.AddDummyPrefix)
	setBool(msg, fields.ByNumber(fieldNormalizerRemoveExtraWhitespaces), n.RemoveExtraWhitespaces)
	setBool(msg, fields.ByNumber(fieldNormalizerEscapeWhitespaces), n.EscapeWhitespaces)

	return msg
}

func getString(msg protoreflect.Message, fd protoreflect.FieldDescriptor) *string {
	if !msg.Has(fd) {
		return nil
	}
	v := msg.Get(fd).String()
	return &v
}

func getFloat32(msg protoreflect.Message, fd protoreflect.FieldDescriptor) *float32 {
	if !msg.Has(fd) {
		return nil
	}
	v := float32(msg.Get(fd).Float())
	return &v
}

func getInt32(msg protoreflect.Message, fd protoreflect.FieldDescriptor) *int32 {
	if !msg.Has(fd) {
		return nil
	}
	v := int32(msg.Get(fd).Int())
	return &v
}

func getBool(msg protoreflect.Message, fd protoreflect.FieldDescriptor) *bool {
	if !msg.Has(fd) {
		return nil
	}
	v := msg.Get(fd).Bool()
	return &v
}

func setString(msg protoreflect.Message, fd protoreflect.FieldDescriptor, v *string) {
	if v != nil {
		msg.Set(fd, protoreflect.ValueOfString(*v))
	}
}

func setInt32(msg protoreflect.Message, fd protoreflect.FieldDescriptor, v *int32) {
	if v != nil {
		msg.Set(fd, protoreflect.ValueOfInt32(*v))
	}
}

func setBool(msg protoreflect.Message, fd protoreflect.FieldDescriptor, v *bool) {
	if v != nil {
		msg.Set(fd, protoreflect.ValueOfBool(*v))
	}
}
