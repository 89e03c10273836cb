package cryptoutil

// passphraseWords is the pool used by GeneratePassphrase. 256 entries
// give exactly 8 bits of entropy per word.
var passphraseWords = []string{
	"acorn", "alpine", "amber", "anchor", "anvil", "apple", "apron", "arrow",
	"aspen", "atlas", "autumn", "badger", "bamboo", "banjo", "barley", "basil",
	"beacon", "beaver", "birch", "bishop", "bison", "blossom", "bluff", "bonfire",
	"border", "boulder", "bramble", "brass", "breeze", "bridge", "bronze", "brook",
	"bucket", "burrow", "butter", "cabin", "cactus", "candle", "canoe", "canyon",
	"caravan", "carbon", "cardinal", "carpet", "cascade", "castle", "cedar", "cellar",
	"chalk", "channel", "chapel", "chestnut", "cinder", "cipher", "citrus", "clover",
	"cobalt", "comet", "compass", "condor", "copper", "coral", "cotton", "cougar",
	"crater", "cricket", "crystal", "cypress", "daisy", "dawn", "delta", "denim",
	"dewdrop", "dolphin", "donkey", "drift", "dune", "eagle", "ebony", "echo",
	"ember", "engine", "ermine", "falcon", "feather", "fennel", "fern", "ferry",
	"fiddle", "finch", "fjord", "flint", "forest", "fossil", "fountain", "foxglove",
	"frost", "galaxy", "garnet", "gazelle", "geyser", "ginger", "glacier", "goblet",
	"granite", "grove", "guitar", "gull", "harbor", "harvest", "hazel", "heron",
	"hickory", "hollow", "honey", "horizon", "hummus", "iceberg", "indigo", "iris",
	"island", "ivory", "jasmine", "jasper", "jigsaw", "juniper", "kayak", "kelp",
	"kettle", "kiwi", "ladder", "lagoon", "lantern", "larch", "lark", "lava",
	"lavender", "lemon", "lentil", "lilac", "linen", "lobster", "locust", "lotus",
	"lunar", "lynx", "magnet", "mango", "mantis", "maple", "marble", "marigold",
	"marsh", "meadow", "melon", "mesa", "mica", "mimosa", "mineral", "mirror",
	"mitten", "morning", "mosaic", "moss", "mountain", "mulberry", "mustang", "myrtle",
	"nebula", "nectar", "nickel", "nimbus", "nutmeg", "oasis", "ocean", "olive",
	"onyx", "opal", "orbit", "orchard", "oregano", "osprey", "otter", "oyster",
	"paddle", "pagoda", "palm", "panther", "paprika", "parsley", "pebble", "pecan",
	"pelican", "pepper", "peridot", "petal", "pewter", "pheasant", "pickle", "pier",
	"pigeon", "pine", "pistachio", "plateau", "plum", "pond", "poplar", "poppy",
	"prairie", "prism", "pumpkin", "quarry", "quartz", "quill", "quince", "raven",
	"redwood", "reef", "ribbon", "ridge", "river", "robin", "rocket", "rosemary",
	"rustic", "saddle", "saffron", "sage", "salmon", "sandal", "sapphire", "satchel",
	"seagrass", "sequoia", "shale", "shadow", "sierra", "silver", "sleet", "sorrel",
	"sparrow", "spruce", "squash", "starling", "summit", "sundial", "tamarind", "tangelo",
	"teak", "thistle", "thunder", "timber", "topaz", "trellis", "trout", "tulip",
}
