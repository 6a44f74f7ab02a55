package extract

import (
	"math"

	"github.com/JanSpindler/blf2mdf/blf"
	"github.com/JanSpindler/blf2mdf/dbcmodel"
	"github.com/JanSpindler/blf2mdf/internal/logging"
	"github.com/JanSpindler/blf2mdf/internal/metricsrv"
	"github.com/JanSpindler/blf2mdf/store"
)

// Decoder consumes CanFrame values strictly in file order and pushes their
// decoded signals into a SignalStore (spec §4.2). It owns the run's epoch:
// the first accepted frame's timestamp becomes zero, and every later point
// is emitted relative to it.
type Decoder struct {
	idx   *DecodeIndex
	store *store.SignalStore

	haveEpoch bool
	epoch     float64
}

// NewDecoder returns a Decoder that writes decoded signals into st using
// idx to resolve (bus, arbitration ID) to DBC descriptors.
func NewDecoder(idx *DecodeIndex, st *store.SignalStore) *Decoder {
	return &Decoder{idx: idx, store: st}
}

// Decode applies one frame against the index, pushing each applicable,
// owned signal's decoded point into the store. Frames on an unconfigured
// channel, or whose arbitration ID is not present on their bus, are
// skipped entirely (spec §4.2 "Frame-level skip rules").
func (d *Decoder) Decode(frame blf.CanFrame) {
	if int(frame.Channel) >= d.idx.BusCount() {
		metricsrv.FramesSkipped.WithLabelValues(metricsrv.ReasonChannelOutOfRange).Inc()

		return
	}

	msg, ok := d.idx.Lookup(frame.Channel, frame.ArbitrationID)
	if !ok {
		metricsrv.FramesSkipped.WithLabelValues(metricsrv.ReasonUnknownSignal).Inc()

		return
	}

	if !d.haveEpoch {
		d.epoch = frame.Timestamp
		d.haveEpoch = true
	}

	ts := frame.Timestamp - d.epoch

	var (
		switchValue uint64
		haveSwitch  bool
	)

	if mux := msg.Multiplexor(); mux != nil {
		if raw, ok := extractRaw(frame.Data, mux.StartBit, mux.BitCount, mux.ByteOrder); ok {
			switchValue = raw
			haveSwitch = true
		}
	}

	for _, sig := range msg.Signals {
		d.decodeSignal(frame, sig, ts, switchValue, haveSwitch)
	}
}

func (d *Decoder) decodeSignal(frame blf.CanFrame, sig *dbcmodel.DbcSignalDescriptor, ts float64, switchValue uint64, haveSwitch bool) {
	switch sig.Multiplex.Role {
	case dbcmodel.Plain, dbcmodel.Multiplexor:
		// always decoded
	case dbcmodel.MultiplexedSignal:
		if !haveSwitch || sig.Multiplex.Value != switchValue {
			metricsrv.FramesSkipped.WithLabelValues(metricsrv.ReasonMultiplexGate).Inc()

			return
		}
	default:
		logging.L().Warn("multiplex_role_unsupported", "signal", sig.Name)
		metricsrv.FramesSkipped.WithLabelValues(metricsrv.ReasonMultiplexGate).Inc()

		return
	}

	if !d.idx.ownsSignal(sig.Name, frame.Channel) {
		metricsrv.FramesSkipped.WithLabelValues(metricsrv.ReasonBusDedup).Inc()

		return
	}

	if sig.ExtendedValueType != dbcmodel.Integer {
		// Float32/Float64 raw signals are a known, deliberate limitation
		// (spec §9 "Float raw signals").
		logging.L().Debug("float_signal_skipped", "signal", sig.Name)
		metricsrv.FramesSkipped.WithLabelValues(metricsrv.ReasonUnsupportedType).Inc()

		return
	}

	raw, ok := extractRaw(frame.Data, sig.StartBit, sig.BitCount, sig.ByteOrder)
	if !ok {
		metricsrv.FramesSkipped.WithLabelValues(metricsrv.ReasonDecodeError).Inc()

		return
	}

	d.storeSignal(sig, ts, raw)
}

// storeSignal applies sign extension and factor/offset scaling (spec
// §4.2 "Sign extension", "Scaling and typing") and pushes the resulting
// point under the series kind the signal settles into.
func (d *Decoder) storeSignal(sig *dbcmodel.DbcSignalDescriptor, ts float64, raw uint64) {
	switch {
	case hasFractionalPart(sig.Factor) || hasFractionalPart(sig.Offset):
		d.store.PushF64(sig.Name, ts, scalePhysical(sig, raw))

	case sig.ValueType == dbcmodel.Signed || sig.Factor < 0 || sig.Offset < 0:
		// A negative factor or offset risks unsigned wrap-around if
		// scaling stayed in unsigned domain (spec §9); promote to
		// signed i64 instead.
		signedRaw := int64(raw)
		if sig.ValueType == dbcmodel.Signed {
			signedRaw = signExtend(raw, sig.BitCount)
		}

		d.store.PushI64(sig.Name, ts, signedRaw*int64(sig.Factor)+int64(sig.Offset))

	default:
		d.store.PushU64(sig.Name, ts, raw*uint64(sig.Factor)+uint64(sig.Offset))
	}

	// SetUnit/SetValueTable only ever touch a series the push above just
	// created or reused, so they never race the kind the push established
	// (store.SetUnit would otherwise default an as-yet-unseen series to
	// F64, and store.SetValueTable to I64, tripping ErrKindMismatch on a
	// first push of any other kind).
	if sig.Unit != "" {
		d.store.SetUnit(sig.Name, sig.Unit)
	}

	if sig.ValueTable != nil {
		d.store.SetValueTable(sig.Name, sig.ValueTable)
	}
}

func scalePhysical(sig *dbcmodel.DbcSignalDescriptor, raw uint64) float64 {
	if sig.ValueType == dbcmodel.Signed {
		return float64(signExtend(raw, sig.BitCount))*sig.Factor + sig.Offset
	}

	return float64(raw)*sig.Factor + sig.Offset
}

func hasFractionalPart(v float64) bool {
	return v != math.Trunc(v)
}
