package telemetry

import "github.com/invopop/jsonschema"

// Schema describes the snapshot message for external consumers.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(SnapshotMessage))
	schema.Title = "Train Simulator Telemetry"
	schema.Description = "Snapshot broadcast by the viewer once per frame over /ws"
	return schema
}

// CommandSchema describes the messages clients may send.
func CommandSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(CommandMessage))
	schema.Title = "Train Simulator Command"
	schema.Description = "Driving command sent by a telemetry client"
	return schema
}
