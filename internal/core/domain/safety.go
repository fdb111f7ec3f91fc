package domain

// CommonDisclaimers are attached to every repair guide.
var CommonDisclaimers = []string{
	"This guide is generated automatically and may contain errors. Verify procedures against the manufacturer's service documentation.",
	"Stop and consult a qualified technician if you are unsure about any step.",
	"You are responsible for following local laws, codes and warranty terms.",
}

var categoryDisclaimers = map[string][]string{
	CategoryVehicle: {
		"Never work under a vehicle supported only by a jack; use rated jack stands on level ground.",
		"Disconnect the battery before working on electrical or airbag components.",
	},
	CategoryAppliance: {
		"Unplug the appliance and shut off its water or gas supply before opening panels.",
		"Capacitors in microwaves and some appliances can hold a lethal charge after unplugging.",
	},
	CategoryHVAC: {
		"Turn off power at the breaker and disconnect before servicing HVAC equipment.",
		"Refrigerant handling requires certification in many jurisdictions.",
	},
	CategoryPlumbing: {
		"Shut off the water supply and relieve pressure before disconnecting fittings.",
	},
	CategoryElectrical: {
		"Turn off the circuit at the breaker and confirm it is de-energized with a tester.",
		"Electrical work may require a licensed electrician and a permit in your area.",
	},
	CategoryElectronics: {
		"Discharge capacitors and disconnect batteries before handling circuit boards.",
		"Damaged lithium batteries can ignite; do not puncture or bend them.",
	},
	CategorySmallEngine: {
		"Disconnect the spark plug wire before working near blades or the flywheel.",
		"Work on fuel systems only when the engine is cool and away from ignition sources.",
	},
}

// Disclaimers returns the common disclaimers followed by any additions for
// the category. The result is a fresh slice.
func Disclaimers(category string) []string {
	extra := categoryDisclaimers[EquipmentQuery{Category: category}.NormalisedCategory()]
	out := make([]string, 0, len(CommonDisclaimers)+len(extra))
	out = append(out, CommonDisclaimers...)
	return append(out, extra...)
}
