package graph

const Schema = `
schema {
	query: Query
	mutation: Mutation
}

scalar Time

enum Permission {
	ADMIN
	USER
	ITEMCREATE
	ITEMUPDATE
	ITEMDELETE
	PERMISSIONUPDATE
}

enum ItemOrderByInput {
	createdAt_ASC
	createdAt_DESC
	price_ASC
	price_DESC
	title_ASC
	title_DESC
}

input ItemWhereInput {
	title_contains: String
	description_contains: String
}

input ItemWhereUniqueInput {
	id: ID!
}

type SuccessMessage {
	message: String
}

type User {
	id: ID!
	name: String!
	email: String!
	permissions: [Permission!]!
	cart: [CartItem!]!
}

type Item {
	id: ID!
	title: String!
	description: String!
	image: String
	largeImage: String
	price: Int!
	userId: ID!
}

type CartItem {
	id: ID!
	quantity: Int!
	item: Item
}

type OrderItem {
	id: ID!
	title: String!
	description: String!
	image: String
	largeImage: String
	price: Int!
	quantity: Int!
}

type Order {
	id: ID!
	items: [OrderItem!]!
	total: Int!
	charge: String!
	currency: String!
	status: String!
	createdAt: Time!
}

type AggregateItem {
	count: Int!
}

type ItemConnection {
	aggregate: AggregateItem!
}

type ItemSearchResult {
	total: Int!
	items: [Item!]!
}

type Query {
	# first defaults to PER_PAGE and is capped at 100.
	items(where: ItemWhereInput, orderBy: ItemOrderByInput, skip: Int, first: Int): [Item]!
	item(where: ItemWhereUniqueInput!): Item
	itemsConnection(where: ItemWhereInput): ItemConnection!
	# Same paging rules as items.
	searchItems(term: String!, skip: Int, first: Int): ItemSearchResult!
	me: User
	users: [User]!
	order(id: ID!): Order
	orders: [Order]!
}

type Mutation {
	createItem(title: String!, description: String!, price: Int!, image: String, largeImage: String): Item!
	updateItem(id: ID!, title: String, description: String, price: Int, image: String, largeImage: String): Item!
	deleteItem(id: ID!): Item
	signup(email: String!, password: String!, name: String!): User!
	signin(email: String!, password: String!): User!
	signout: SuccessMessage
	requestReset(email: String!): SuccessMessage
	resetPassword(resetToken: String!, password: String!, confirmPassword: String!): User!
	updatePermissions(permissions: [Permission!]!, userId: ID!): User
	addToCart(id: ID!): CartItem
	removeFromCart(id: ID!): CartItem
	createOrder(token: String!): Order!
}
`
